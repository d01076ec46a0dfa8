package engine

import (
	"crypto/tls"
	"net"
	"strings"
	"sync"
	"time"

	"perch/logger"

	"github.com/lrstanley/girc"
)

// gircEngine drives one network connection through girc.
type gircEngine struct {
	mu     sync.Mutex
	params Params
	client *girc.Client
	events chan<- Event

	// Capabilities registered for negotiation and the subset the
	// server acked on the current session.
	requested []string
	enabled   map[string]bool
}

// NewGirc is the production engine Factory.
func NewGirc(p Params, events chan<- Event) Engine {
	e := &gircEngine{
		params:  p,
		events:  events,
		enabled: make(map[string]bool),
	}
	e.client = girc.New(e.config())
	e.bind()
	return e
}

func (e *gircEngine) config() girc.Config {
	conf := girc.Config{
		Server:     e.params.Host,
		Port:       e.params.Port,
		ServerPass: e.params.Password,
		Nick:       e.params.Nick,
		User:       e.params.Username,
		Name:       e.params.Realname,
		Bind:       e.params.Bind,
		SSL:        e.params.Tls,
		PingDelay:  60 * time.Second,
		// The supervisor owns connection upgrades and reconnect
		// scheduling; STS policies are surfaced as events instead.
		DisableSTS:         true,
		DisableSTSFallback: true,
		RecoverFunc: func(_ *girc.Client, err *girc.HandlerError) {
			logger.Error("Recovered from handler panic", "error", err.Error())
		},
	}

	if e.params.Tls {
		conf.TLSConfig = &tls.Config{
			ServerName:         e.params.Host,
			InsecureSkipVerify: !e.params.VerifyCert,
		}
	}

	if w := e.params.WebIRC; w != nil {
		conf.WebIRC = girc.WebIRC{
			Password: w.Password,
			Gateway:  w.Gateway,
			Hostname: w.Hostname,
			Address:  w.Address,
		}
	}

	if len(e.requested) > 0 {
		conf.SupportedCaps = make(map[string][]string, len(e.requested))
		for _, name := range e.requested {
			conf.SupportedCaps[name] = nil
		}
	}

	return conf
}

func (e *gircEngine) bind() {
	e.client.Handlers.Add(girc.CONNECTED, func(_ *girc.Client, ev girc.Event) {
		e.events <- Event{Type: EventConnected, Time: time.Now()}
	})

	e.client.Handlers.Add(girc.PRIVMSG, e.onMessage)
	e.client.Handlers.Add(girc.NOTICE, e.onMessage)

	e.client.Handlers.Add(girc.CAP, func(_ *girc.Client, ev girc.Event) {
		if len(ev.Params) < 2 {
			return
		}
		switch ev.Params[1] {
		case girc.CAP_LS, girc.CAP_NEW:
			// The sts value carries the policy: duration=...,port=...
			for _, entry := range strings.Fields(ev.Last()) {
				if value, ok := strings.CutPrefix(entry, "sts="); ok {
					e.events <- Event{Type: EventSTSPolicy, Time: time.Now(), Cap: "sts", Text: value}
				}
			}
		case girc.CAP_ACK:
			for _, name := range strings.Fields(ev.Last()) {
				// An acked "-cap" confirms removal, not grant.
				removed := strings.HasPrefix(name, "-")
				name = strings.TrimPrefix(name, "-")
				e.mu.Lock()
				e.enabled[name] = !removed
				e.mu.Unlock()
				if !removed {
					e.events <- Event{Type: EventCapAck, Time: time.Now(), Cap: name}
				}
			}
		}
	})
}

func (e *gircEngine) onMessage(_ *girc.Client, ev girc.Event) {
	var source string
	if ev.Source != nil {
		source = ev.Source.String()
	}
	var target string
	if len(ev.Params) > 0 {
		target = ev.Params[0]
	}
	e.events <- Event{
		Type:   EventMessage,
		Time:   time.Now(),
		Source: source,
		Target: target,
		Text:   ev.Last(),
	}
}

// Connect rebuilds the client configuration so parameter and capability
// changes take effect, then blocks for the session lifetime. Acked
// capabilities from a previous session are forgotten first.
func (e *gircEngine) Connect() error {
	e.mu.Lock()
	e.enabled = make(map[string]bool)
	e.client.Config = e.config()
	e.mu.Unlock()
	return e.client.Connect()
}

func (e *gircEngine) Quit(message string) {
	e.client.Quit(message)
}

func (e *gircEngine) ChangeNick(nick string) {
	e.client.Cmd.Nick(nick)
}

func (e *gircEngine) Raw(line string) {
	if err := e.client.Cmd.SendRaw(line); err != nil {
		logger.Error("Error sending raw line", "error", err)
	}
}

// RequestCapability registers a capability; it joins the negotiation
// list rebuilt into the client configuration on every connect.
func (e *gircEngine) RequestCapability(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.requested {
		if existing == name {
			return
		}
	}
	e.requested = append(e.requested, name)
}

func (e *gircEngine) CapEnabled(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled[name]
}

func (e *gircEngine) SetParams(p Params) {
	e.mu.Lock()
	e.params = p
	e.mu.Unlock()
}

func (e *gircEngine) Transport() Transport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gircTransport{client: e.client, params: e.params}
}

type gircTransport struct {
	client *girc.Client
	params Params
}

func (t gircTransport) IsConnected() bool {
	return t.client.IsConnected()
}

// Encrypted inspects the live socket, not the configured intent.
func (t gircTransport) Encrypted() bool {
	state, err := t.client.TLSConnectionState()
	return err == nil && state != nil
}

// PeerVerified holds when the handshake ran with certificate
// verification enabled; an unverified handshake would not have
// completed.
func (t gircTransport) PeerVerified() bool {
	return t.params.VerifyCert && t.Encrypted()
}

// RemoteAddress is the configured host; girc does not expose the dialed
// socket address.
func (t gircTransport) RemoteAddress() string {
	return t.params.Host
}

// IsLoopback reports whether a remote endpoint is the local host, which
// the status projection trusts as secure by fiat.
func IsLoopback(addr string) bool {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
