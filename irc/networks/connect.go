package networks

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"perch/helpers"
	"perch/irc/channels"
	"perch/irc/engine"
	"perch/logger"

	"github.com/hako/durafmt"
)

const (
	// Echo-message compatibility, requested on every connection.
	capSelfMessage = "znc.in/self-message"
	// History playback, requested only when the message store can serve.
	capChatHistory = "draft/chathistory"
	// Live realname changes during Edit.
	capSetName = "setname"

	retryBase   = 10 * time.Second
	retryJitter = time.Second
	// 360 attempts at 10s+ apart keeps a flapping network trying for
	// over an hour before giving up.
	maxRetries = 360
)

// reconnectDelay is the jittered backoff between attempts. The jitter
// is strictly positive so two networks reconnecting to the same host at
// the same moment never share a delay with the bare base.
func reconnectDelay() time.Duration {
	return retryBase + helpers.Jitter(retryJitter)
}

// EngineParams builds the parameter bundle handed to the protocol
// engine from the validated configuration.
func (n *Network) EngineParams() engine.Params {
	conf := n.deps.Config

	username := n.Username
	if conf.Perch.UseHashedAddress && n.deps.ClientAddress != "" {
		username = helpers.HashedIdent(n.deps.ClientAddress)
	}

	return engine.Params{
		Nick:     n.Nick,
		Username: username,
		Realname: n.Realname,

		Host:       n.Host,
		Port:       n.Port,
		Password:   n.Password,
		Tls:        n.Tls,
		VerifyCert: n.VerifyCert,
		Bind:       conf.Perch.Bind,

		AutoRetry:   true,
		RetryBase:   retryBase,
		RetryJitter: retryJitter,
		MaxRetries:  maxRetries,

		WebIRC: n.webIRCPayload(),
	}
}

// webIRCPayload builds the gateway payload for this network's host, or
// nil when the administrator configured no credential. An installed
// override computes the whole payload itself and the static password
// map is not consulted.
func (n *Network) webIRCPayload() *engine.WebIRC {
	address := n.deps.ClientAddress
	hostname := address
	if names, err := net.LookupAddr(address); err == nil && len(names) > 0 {
		hostname = strings.TrimSuffix(names[0], ".")
	}

	if n.deps.WebIRCOverride != nil {
		return n.deps.WebIRCOverride(n.Host, address, hostname, n.deps.ClientSecure)
	}

	password := n.deps.Config.WebIRCPassword(n.Host)
	if password == "" {
		return nil
	}

	return &engine.WebIRC{
		Password: password,
		Gateway:  "perch",
		Address:  address,
		Hostname: hostname,
		Secure:   n.deps.ClientSecure,
	}
}

// Connect validates the configuration, constructs the engine, requests
// capability negotiation and starts the connection state machine. A
// validation failure aborts without touching connection state.
func (n *Network) Connect() error {
	n.mu.Lock()
	if n.eng != nil {
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	if err := n.Validate(); err != nil {
		return err
	}

	n.mu.Lock()
	n.events = make(chan engine.Event, 32)
	n.eng = n.deps.EngineFactory(n.EngineParams(), n.events)
	n.state = StateIdle
	n.retries = 0
	n.UserDisconnected = false

	n.eng.RequestCapability(capSelfMessage)
	if n.deps.Config.Perch.MessageLogging &&
		n.deps.MessageStore != nil && n.deps.MessageStore.CanProvide() {
		n.eng.RequestCapability(capChatHistory)
	}
	n.mu.Unlock()

	go n.loop()
	n.dial()
	return nil
}

// dial runs one connection attempt. The engine blocks for the lifetime
// of the session; its return is translated into a disconnect event so
// the loop processes it in order with everything else. A dial after the
// user quit is a no-op: the stop in close and the guard here cover the
// window where the reconnect timer fires concurrently with the quit.
func (n *Network) dial() {
	n.mu.Lock()
	n.reconnectTimer = nil
	if n.eng == nil || n.UserDisconnected || n.state == StateQuitting || n.state == StateQuit {
		n.mu.Unlock()
		return
	}
	n.state = StateConnecting
	eng := n.eng
	events := n.events
	n.mu.Unlock()

	go func() {
		err := eng.Connect()
		events <- engine.Event{Type: engine.EventDisconnected, Time: time.Now(), Err: err}
	}()
}

// loop is the per-network state machine: engine callbacks arrive as
// messages here and are processed one at a time.
func (n *Network) loop() {
	for ev := range n.events {
		switch ev.Type {
		case engine.EventConnected:
			n.handleConnected()
		case engine.EventDisconnected:
			if n.handleDisconnected(ev) {
				return
			}
		case engine.EventMessage:
			n.handleMessage(ev)
		case engine.EventCapAck:
			n.mu.Lock()
			n.caps[ev.Cap] = true
			n.mu.Unlock()
		case engine.EventSTSPolicy:
			n.handleSTSPolicy(ev.Text)
		}
	}
}

func (n *Network) handleConnected() {
	n.mu.Lock()
	n.state = StateConnected
	n.retries = 0
	eng := n.eng
	commands := append([]string(nil), n.Commands...)
	pending := n.PendingNick
	n.PendingNick = ""

	var joins []*channels.Channel
	for _, ch := range n.Channels {
		if ch.Kind == channels.KindChannel {
			joins = append(joins, ch)
		}
	}
	n.mu.Unlock()

	n.log().Info("Connected")
	n.Lobby().PushSystem("Connected to the network.")

	for _, command := range commands {
		eng.Raw(command)
	}
	for _, ch := range joins {
		if ch.Key != "" {
			eng.Raw("JOIN " + ch.Name + " " + ch.Key)
		} else {
			eng.Raw("JOIN " + ch.Name)
		}
	}
	if pending != "" {
		eng.ChangeNick(pending)
	}

	n.notifyChange()
	n.save()
}

// handleDisconnected schedules the next attempt, or ends the loop when
// the user quit or the retry limit ran out. Returns true to stop.
func (n *Network) handleDisconnected(ev engine.Event) bool {
	n.mu.Lock()
	// Session capabilities do not survive the connection.
	n.caps = make(map[string]bool)
	quitting := n.state == StateQuitting || n.UserDisconnected
	if quitting {
		n.state = StateQuit
		n.eng = nil
		n.mu.Unlock()
		n.log().Info("Connection closed")
		n.notifyChange()
		return true
	}

	n.retries++
	retries := n.retries
	n.mu.Unlock()

	if ev.Err != nil {
		n.log().Warn("Disconnected", "error", ev.Err, "attempt", retries)
	} else {
		n.log().Warn("Disconnected", "attempt", retries)
	}

	if retries > maxRetries {
		n.mu.Lock()
		n.state = StateIdle
		n.eng = nil
		n.mu.Unlock()
		n.Lobby().PushError(fmt.Sprintf(
			"Gave up reconnecting after %d attempts. Edit the network to try again.", maxRetries))
		n.notifyChange()
		return true
	}

	delay := reconnectDelay()

	n.mu.Lock()
	// A quit may have landed while the lock was dropped above.
	if n.state == StateQuitting || n.UserDisconnected {
		n.state = StateQuit
		n.eng = nil
		n.mu.Unlock()
		n.log().Info("Connection closed")
		n.notifyChange()
		return true
	}
	n.state = StateReconnectWait
	n.reconnectTimer = time.AfterFunc(delay, n.dial)
	n.mu.Unlock()

	n.Lobby().PushSystem(fmt.Sprintf("Disconnected, reconnecting in %s...",
		durafmt.Parse(delay.Truncate(time.Second)).LimitFirstN(1).String()))
	n.notifyChange()
	return false
}

func (n *Network) handleMessage(ev engine.Event) {
	if n.Ignores(ev.Source) {
		return
	}

	nick := ev.Source
	if i := strings.Index(nick, "!"); i >= 0 {
		nick = nick[:i]
	}

	n.mu.Lock()
	target := n.FindChannel(ev.Target)
	if target == nil {
		if strings.EqualFold(ev.Target, n.Nick) {
			// Private message: open a query window for the sender.
			target = channels.NewQuery(nick)
			n.AddChannel(target)
		} else {
			target = n.Lobby()
		}
	}
	highlight := n.Highlights(ev.Text)
	n.mu.Unlock()

	target.Push(channels.Message{
		Type:      channels.MessageNormal,
		Time:      ev.Time,
		From:      nick,
		Text:      ev.Text,
		Highlight: highlight,
	})
	n.notifyChange()
}

// handleSTSPolicy records a transport policy advertised by the server
// as comma-separated key=value pairs. Only a secure connection may
// install or refresh a policy; a zero duration revokes it.
func (n *Network) handleSTSPolicy(raw string) {
	n.mu.Lock()
	secure := n.Tls
	host := n.Host
	port := n.Port
	n.mu.Unlock()

	if !secure {
		return
	}

	duration := -1
	for _, pair := range strings.Split(raw, ",") {
		key, value, _ := strings.Cut(pair, "=")
		switch key {
		case "duration":
			if v, err := strconv.Atoi(value); err == nil && v >= 0 {
				duration = v
			}
		case "port":
			if v, err := strconv.Atoi(value); err == nil && v > 0 && v <= 65535 {
				port = v
			}
		}
	}

	switch {
	case duration == 0:
		n.deps.STS.Remove(host)
	case duration > 0:
		n.deps.STS.Set(host, port, time.Duration(duration)*time.Second)
	}
}

// Quit ends the connection on explicit user request: no reconnect
// follows, and the network stays disconnected across restarts.
func (n *Network) Quit(message string) {
	n.close(message, true)
}

// Disconnect closes the connection without marking it user-initiated,
// so the network reconnects on the next process start. Used at
// shutdown.
func (n *Network) Disconnect(message string) {
	n.close(message, false)
}

// close sends the protocol quit and cancels any pending reconnect. A
// quit on a host governed by an STS policy extends that policy's expiry
// window from now, per the protocol's rescheduling rule.
func (n *Network) close(message string, userInitiated bool) {
	n.mu.Lock()
	if n.eng == nil {
		n.mu.Unlock()
		return
	}
	if userInitiated {
		n.UserDisconnected = true
	}
	if n.reconnectTimer != nil {
		n.reconnectTimer.Stop()
		n.reconnectTimer = nil
	}

	if n.state == StateReconnectWait {
		// No live session remains, so no disconnect event will arrive;
		// the loop is released here instead.
		n.state = StateQuit
		n.eng = nil
		events := n.events
		n.events = nil
		n.mu.Unlock()

		close(events)
		n.deps.STS.RefreshExpiration(n.Host)
		n.log().Info("Connection closed")
		n.notifyChange()
		return
	}

	eng := n.eng
	n.state = StateQuitting
	n.mu.Unlock()

	n.deps.STS.RefreshExpiration(n.Host)

	if message == "" {
		message = n.deps.Config.Perch.LeaveMessage
	}
	eng.Quit(message)
}

func (n *Network) log() *slog.Logger {
	return logger.With("network", n.Name, "host", n.Host)
}
