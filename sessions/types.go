package sessions

import (
	"sync"
	"time"

	"perch/irc/networks"
)

type (
	// Store is the persistence collaborator: opaque serialized account
	// records by name. The blob shape is DataToSave's output; the
	// store does not interpret it. Create must refuse to overwrite an
	// existing record.
	Store interface {
		LoadAll() (map[string][]byte, error)
		LoadOne(name string) (blob []byte, found bool, err error)
		Save(name string, blob []byte) error
		Create(name string, blob []byte) error
	}

	// Preferences are the account's UI settings, carried opaquely for
	// the front end.
	Preferences struct {
		Theme  string `json:"theme,omitempty"`
		Locale string `json:"locale,omitempty"`
	}

	// Session owns everything belonging to one account: credential,
	// preferences and the ordered set of network supervisors.
	Session struct {
		Name         string
		PasswordHash string
		Log          bool
		Prefs        Preferences
		Networks     []*networks.Network

		store     Store
		baseDeps  networks.Deps
		notify    func(*networks.Network)
		saveMu    sync.Mutex
		saveTimer *time.Timer
		mu        sync.Mutex
	}

	// Account is the persisted shape of a session: the account record
	// with networks replaced by their exported form.
	Account struct {
		Password string              `json:"password"`
		Log      bool                `json:"log"`
		Prefs    Preferences         `json:"prefs"`
		Networks []networks.Exported `json:"networks"`
	}

	// Directory is the process-wide registry of active sessions,
	// populated lazily from the store and never evicted for the
	// process lifetime.
	Directory struct {
		mu       sync.Mutex
		sessions map[string]*Session
		store    Store
		deps     networks.Deps

		// Notify, when set, receives every network change with its
		// owning account, for pushing snapshots to attached clients.
		Notify func(account string, network *networks.Network)
	}
)

// Pending writes triggered close together collapse into one.
const saveDelay = 3 * time.Second
