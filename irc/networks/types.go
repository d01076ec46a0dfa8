package networks

import (
	"regexp"
	"sync"
	"time"

	"perch/irc/channels"
	"perch/irc/engine"
	"perch/irc/sts"
	"perch/settings"
)

type (
	// MessageStore is the message-history collaborator. Playback
	// capability is only requested when it reports it can serve.
	MessageStore interface {
		CanProvide() bool
	}

	// WebIRCOverride computes a gateway payload dynamically. When the
	// administrator installs one, the static per-host password map is
	// bypassed entirely.
	WebIRCOverride func(host, address, hostname string, secure bool) *engine.WebIRC

	// Deps are the collaborators injected into every network.
	Deps struct {
		Config         *settings.Config
		STS            *sts.Store
		EngineFactory  engine.Factory
		MessageStore   MessageStore
		WebIRCOverride WebIRCOverride

		// OnSave asks the owning session to persist the account.
		OnSave func()
		// OnChange tells the client layer this network's projection
		// changed.
		OnChange func(*Network)

		// Remote endpoint of the attached client, for WEBIRC and
		// hashed-address usernames.
		ClientAddress string
		ClientSecure  bool
	}

	State int

	// Network supervises one IRC network connection on behalf of an
	// account: configuration, validation, the live engine and its
	// reconnect schedule, and the ordered channel list.
	Network struct {
		ID string

		Name             string
		Nick             string
		Host             string
		Port             int
		Tls              bool
		VerifyCert       bool
		Password         string
		Username         string
		Realname         string
		AwayMessage      string
		Commands         []string
		UserDisconnected bool
		IgnoreList       []string

		// Nick to reclaim once the connection allows it.
		PendingNick string

		Channels []*channels.Channel

		highlight *regexp.Regexp

		deps   Deps
		eng    engine.Engine
		events chan engine.Event
		caps   map[string]bool

		state   State
		retries int

		// Pending reconnect attempt, cancelled on quit.
		reconnectTimer *time.Timer

		mu sync.Mutex
	}
)

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnectWait
	StateQuitting
	StateQuit
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnectWait:
		return "reconnect-wait"
	case StateQuitting:
		return "quitting"
	case StateQuit:
		return "quit"
	}
	return "unknown"
}
