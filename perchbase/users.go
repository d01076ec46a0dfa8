package perchbase

import (
	"strings"

	"git.mills.io/prologic/bitcask"
)

const userPrefix = "user:"

// UserStore exposes the account records as an opaque blob-by-name store.
// It satisfies the persistence contract the session layer consumes.
type UserStore struct{}

func (UserStore) LoadAll() (map[string][]byte, error) {
	records := make(map[string][]byte)
	err := Scan(userPrefix, func(key string) error {
		blob, err := Get(key)
		if err != nil {
			return err
		}
		records[strings.TrimPrefix(key, userPrefix)] = blob
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (UserStore) LoadOne(name string) ([]byte, bool, error) {
	blob, err := Get(userPrefix + name)
	if err != nil {
		if err == bitcask.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return blob, true, nil
}

func (UserStore) Save(name string, blob []byte) error {
	return PutBytes(userPrefix+name, blob)
}

func (UserStore) Create(name string, blob []byte) error {
	if Has(userPrefix + name) {
		return ErrDuplicate
	}
	return PutBytes(userPrefix+name, blob)
}
