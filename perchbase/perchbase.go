package perchbase

import (
	"errors"
	"time"

	"perch/logger"

	"git.mills.io/prologic/bitcask"
)

var (
	Data *bitcask.Bitcask

	// ErrDuplicate is returned when creating a record whose key exists.
	ErrDuplicate = errors.New("perchbase: record already exists")
)

func Init(path string) error {
	// Increase the maximum value size to 10MB (from the default 65KB),
	// account records grow with channel lists.
	var err error
	Data, err = bitcask.Open(path, bitcask.WithMaxValueSize(10*1024*1024))
	if err != nil {
		return err
	}

	go func() {
		for {
			time.Sleep(24 * time.Hour)
			Merge()
		}
	}()

	return nil
}

func Close() {
	if Data == nil {
		return
	}
	if err := Data.Close(); err != nil {
		logger.Error("Error closing database", "error", err)
	}
	Data = nil
}

func Merge() {
	logger.Info("Merging database to reclaim space...")
	err := Data.Merge()
	if err != nil {
		logger.Error("Error merging database", "error", err)
	} else {
		logger.Info("Database merge complete.")
	}
}

func PutBytes(key string, value []byte) error {
	compressedValue, err := compress(value)
	if err != nil {
		return err
	}
	return Data.Put([]byte(key), compressedValue)
}

func Get(key string) ([]byte, error) {
	compressedValue, err := Data.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	return decompress(compressedValue)
}

func Has(key string) bool {
	return Data.Has([]byte(key))
}

func Delete(key string) error {
	return Data.Delete([]byte(key))
}

// Scan calls fn for every key with the given prefix.
func Scan(prefix string, fn func(key string) error) error {
	return Data.Scan([]byte(prefix), func(key []byte) error {
		return fn(string(key))
	})
}
