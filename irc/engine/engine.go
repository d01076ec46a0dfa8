// Package engine defines the contract between a network supervisor and
// the IRC protocol client driving its connection. The supervisor only
// ever sees this interface; the girc-backed implementation lives in
// girc.go and tests substitute their own.
package engine

import "time"

type (
	// Params is the full parameter bundle a supervisor hands to an
	// engine factory.
	Params struct {
		Nick     string
		Username string
		Realname string

		Host       string
		Port       int
		Password   string
		Tls        bool
		VerifyCert bool
		Bind       string

		// Reconnect policy. The supervisor owns the retry loop; the
		// engine only reports disconnects.
		AutoRetry   bool
		RetryBase   time.Duration
		RetryJitter time.Duration
		MaxRetries  int

		WebIRC *WebIRC
	}

	// WebIRC is the gateway payload presented to the destination
	// network so it sees the real originating client address.
	WebIRC struct {
		Password string
		Gateway  string
		Address  string
		Hostname string
		Secure   bool
	}

	EventType int

	// Event is one asynchronous protocol occurrence, posted to the
	// supervisor's inbound queue.
	Event struct {
		Type   EventType
		Time   time.Time
		Source string
		Target string
		Text   string
		Cap    string
		Err    error
	}

	// Transport reports the live connection state of an engine.
	Transport interface {
		IsConnected() bool
		Encrypted() bool
		PeerVerified() bool
		RemoteAddress() string
	}

	// Engine is the imperative surface of the protocol client.
	Engine interface {
		// Connect dials and runs the protocol session, blocking until
		// the connection is gone. A nil error means a clean quit.
		Connect() error
		Quit(message string)
		ChangeNick(nick string)
		Raw(line string)

		// RequestCapability registers a capability to negotiate on
		// every (re)connect. CapEnabled reports acks for the current
		// session only.
		RequestCapability(name string)
		CapEnabled(name string) bool

		// SetParams replaces the connection parameters used by the
		// next (re)connect without touching the live session.
		SetParams(Params)
		Transport() Transport
	}

	// Factory builds an engine for one network. Events are posted to
	// the supplied channel.
	Factory func(p Params, events chan<- Event) Engine
)

const (
	EventConnected EventType = iota
	EventDisconnected
	EventMessage
	EventCapAck
	// EventSTSPolicy carries a raw advertised transport policy in Text.
	EventSTSPolicy
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventMessage:
		return "message"
	case EventCapAck:
		return "cap-ack"
	case EventSTSPolicy:
		return "sts-policy"
	}
	return "unknown"
}
