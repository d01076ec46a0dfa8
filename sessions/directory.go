package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"perch/irc/networks"
	"perch/logger"

	"golang.org/x/crypto/bcrypt"
)

// Account names double as storage keys, so they must be bare
// filesystem-safe tokens: no separators, no traversal.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

var ErrInvalidUsername = errors.New("invalid account name")

func ValidName(name string) bool {
	return name != "." && name != ".." && namePattern.MatchString(name)
}

// NewDirectory builds the process-wide session registry. deps is the
// collaborator template handed to every network; per-session hooks are
// filled in at session construction.
func NewDirectory(store Store, deps networks.Deps) *Directory {
	return &Directory{
		sessions: make(map[string]*Session),
		store:    store,
		deps:     deps,
	}
}

// LoadAll populates the registry from every persisted account record.
// Records that fail to deserialize are logged and skipped, never fatal.
func (d *Directory) LoadAll() {
	records, err := d.store.LoadAll()
	if err != nil {
		logger.Error("Error loading accounts", "error", err)
		return
	}
	for name, blob := range records {
		d.mu.Lock()
		_, cached := d.sessions[name]
		d.mu.Unlock()
		if cached {
			continue
		}
		session, err := d.build(name, blob)
		if err != nil {
			logger.Account(name).Error("Error loading account", "error", err)
			continue
		}
		d.cache(session)
	}
}

// LoadUser returns the cached session for an account, loading it from
// the store on first reference. Concurrent lookups for the same name
// are idempotent: exactly one cached instance survives.
func (d *Directory) LoadUser(name string) (*Session, error) {
	d.mu.Lock()
	if session, ok := d.sessions[name]; ok {
		d.mu.Unlock()
		return session, nil
	}
	d.mu.Unlock()

	blob, found, err := d.store.LoadOne(name)
	if err != nil {
		return nil, fmt.Errorf("loading account %q: %w", name, err)
	}
	if !found {
		return nil, nil
	}

	session, err := d.build(name, blob)
	if err != nil {
		return nil, fmt.Errorf("loading account %q: %w", name, err)
	}
	return d.cache(session), nil
}

// AddUser creates and persists a new account. The name must be a bare
// token and must not collide with an existing record; collisions are a
// user-facing error backed by the store's uniqueness constraint.
func (d *Directory) AddUser(name, password string, log bool) (*Session, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Name:         name,
		PasswordHash: string(hash),
		Log:          log,
		store:        d.store,
		baseDeps:     d.deps,
	}
	session.notify = d.notifier(session)

	blob, err := json.Marshal(session.DataToSave())
	if err != nil {
		return nil, err
	}
	if err := d.store.Create(name, blob); err != nil {
		return nil, fmt.Errorf("creating account %q: %w", name, err)
	}

	logger.Account(name).Info("Account created")
	return d.cache(session), nil
}

// Sessions returns a snapshot of every active session.
func (d *Directory) Sessions() []*Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	all := make([]*Session, 0, len(d.sessions))
	for _, session := range d.sessions {
		all = append(all, session)
	}
	return all
}

// build deserializes an account record into a live session with its
// networks reconstructed.
func (d *Directory) build(name string, blob []byte) (*Session, error) {
	var account Account
	if err := json.Unmarshal(blob, &account); err != nil {
		return nil, err
	}

	session := &Session{
		Name:         name,
		PasswordHash: account.Password,
		Log:          account.Log,
		Prefs:        account.Prefs,
		store:        d.store,
		baseDeps:     d.deps,
	}
	session.notify = d.notifier(session)
	for _, exported := range account.Networks {
		session.Networks = append(session.Networks,
			networks.FromExport(exported, session.networkDeps()))
	}
	return session, nil
}

// notifier scopes change notifications to the owning account. The
// directory's Notify hook may be installed after sessions exist.
func (d *Directory) notifier(session *Session) func(*networks.Network) {
	return func(network *networks.Network) {
		if d.Notify != nil {
			d.Notify(session.Name, network)
		}
	}
}

// cache inserts under the double-checked lock; a racing insert for the
// same name keeps the first instance.
func (d *Directory) cache(session *Session) *Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.sessions[session.Name]; ok {
		return existing
	}
	d.sessions[session.Name] = session
	return session
}

// CheckPassword verifies an account credential.
func (s *Session) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)) == nil
}
