package networks

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"perch/irc/channels"
	"perch/irc/engine"
	"perch/irc/sts"
	"perch/settings"
)

// mockTransport implements engine.Transport for testing
type mockTransport struct {
	connected bool
	encrypted bool
	verified  bool
	remote    string
}

func (m mockTransport) IsConnected() bool     { return m.connected }
func (m mockTransport) Encrypted() bool       { return m.encrypted }
func (m mockTransport) PeerVerified() bool    { return m.verified }
func (m mockTransport) RemoteAddress() string { return m.remote }

// mockEngine implements engine.Engine for testing
type mockEngine struct {
	params    engine.Params
	transport mockTransport

	connects  int
	requested []string
	enabled   map[string]bool
	raws      []string
	nicks     []string
	quits     []string
	release   chan error
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		enabled: make(map[string]bool),
		release: make(chan error),
	}
}

func (m *mockEngine) Connect() error {
	m.connects++
	return <-m.release
}
func (m *mockEngine) Quit(message string)    { m.quits = append(m.quits, message) }
func (m *mockEngine) ChangeNick(nick string) { m.nicks = append(m.nicks, nick) }
func (m *mockEngine) Raw(line string)        { m.raws = append(m.raws, line) }
func (m *mockEngine) RequestCapability(name string) {
	m.requested = append(m.requested, name)
}
func (m *mockEngine) CapEnabled(name string) bool { return m.enabled[name] }
func (m *mockEngine) SetParams(p engine.Params)   { m.params = p }
func (m *mockEngine) Transport() engine.Transport { return m.transport }

func testConfig() *settings.Config {
	config := &settings.Config{}
	config.ApplyDefaults()
	return config
}

func testDeps(config *settings.Config, store *sts.Store, mock *mockEngine) Deps {
	return Deps{
		Config: config,
		STS:    store,
		EngineFactory: func(p engine.Params, events chan<- engine.Event) engine.Engine {
			return mock
		},
	}
}

func newTestNetwork(config *settings.Config, store *sts.Store) *Network {
	n := New("testnet", testDeps(config, store, newMockEngine()))
	n.Host = "irc.example.com"
	n.SetNick("perchling")
	return n
}

func TestValidateNickSanitization(t *testing.T) {
	tests := []struct {
		name string
		nick string
		want string
	}{
		{"plain", "perchling", "perchling"},
		{"whitespace", "perch ling", "perchling"},
		{"reserved", "per:ch!li@ng", "perchling"},
		{"control", "perch\x00\x1fling", "perchling"},
		{"empty-falls-back", "", "perch"},
		{"all-stripped-falls-back", " :!@\r\n", "perch"},
	}

	for _, tt := range tests {
		test := tt
		t.Run(test.name, func(t *testing.T) {
			n := newTestNetwork(testConfig(), sts.NewStore())
			n.Nick = test.nick
			if err := n.Validate(); err != nil {
				t.Fatal(err)
			}
			if n.Nick != test.want {
				t.Fatalf("got nick %q, wanted %q", n.Nick, test.want)
			}
		})
	}
}

func TestValidateNickLength(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.Nick = strings.Repeat("a", 200)
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(n.Nick) != 100 {
		t.Fatalf("got nick length %d, wanted 100", len(n.Nick))
	}
}

func TestValidateUsernameDerivedFromNick(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.Nick = "bird-42"
	n.Username = ""
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	if n.Username != "bird42" {
		t.Fatalf("got username %q, wanted %q", n.Username, "bird42")
	}
}

func TestValidateHostNormalization(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.Host = "IRC.Example.\r\nCOM"
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	if n.Host != "irc.example.com" {
		t.Fatalf("got host %q", n.Host)
	}
}

func TestValidatePortDefaults(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.Port = 0
	n.Tls = true
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	if n.Port != 6697 {
		t.Fatalf("got port %d, wanted 6697", n.Port)
	}

	n = newTestNetwork(testConfig(), sts.NewStore())
	n.Port = 0
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	if n.Port != 6667 {
		t.Fatalf("got port %d, wanted 6667", n.Port)
	}
}

func TestValidateEmptyHost(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.Host = ""
	if err := n.Validate(); err == nil {
		t.Fatal("empty host accepted")
	}

	lobby := n.Lobby()
	if len(lobby.Messages) == 0 || lobby.Messages[len(lobby.Messages)-1].Type != channels.MessageError {
		t.Fatal("no error delivered to the lobby")
	}
}

func TestValidateLockNetworkRejectsForeignHost(t *testing.T) {
	config := testConfig()
	config.Perch.LockNetwork = true
	config.Perch.Public = false
	config.Defaults.Host = "irc.home.example.com"

	n := newTestNetwork(config, sts.NewStore())
	n.Host = "irc.elsewhere.example.com"
	if err := n.Validate(); err == nil {
		t.Fatal("foreign host accepted under lock")
	}
}

func TestValidateLockNetworkPublicForcesDefaults(t *testing.T) {
	config := testConfig()
	config.Perch.LockNetwork = true
	config.Perch.Public = true
	config.Defaults.Host = "irc.home.example.com"
	config.Defaults.Port = 6697
	config.Defaults.Tls = true
	config.Defaults.VerifyCert = true

	n := newTestNetwork(config, sts.NewStore())
	n.Host = "irc.elsewhere.example.com"
	n.Port = 9999
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	if n.Host != "irc.home.example.com" || n.Port != 6697 || !n.Tls || !n.VerifyCert {
		t.Fatalf("defaults not forced: host=%q port=%d tls=%v verify=%v", n.Host, n.Port, n.Tls, n.VerifyCert)
	}
}

func TestValidateSTSUpgrade(t *testing.T) {
	store := sts.NewStore()
	store.Set("irc.example.com", 7000, time.Hour)

	n := newTestNetwork(testConfig(), store)
	n.Tls = false
	n.Port = 6667
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}

	if !n.Tls || !n.VerifyCert || n.Port != 7000 {
		t.Fatalf("STS policy not enforced: tls=%v verify=%v port=%d", n.Tls, n.VerifyCert, n.Port)
	}

	lobby := n.Lobby()
	if len(lobby.Messages) == 0 || lobby.Messages[len(lobby.Messages)-1].Type != channels.MessageSystem {
		t.Fatal("no upgrade notice delivered to the lobby")
	}
}

func TestAddChannelOrdering(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.AddChannel(channels.NewChannel("alpha", ""))
	n.AddChannel(channels.NewChannel("zulu", ""))

	index := n.AddChannel(channels.NewChannel("mango", ""))
	if index != 2 {
		t.Fatalf("got index %d, wanted 2", index)
	}

	want := []string{"testnet", "alpha", "mango", "zulu"}
	for i, name := range want {
		if n.Channels[i].Name != name {
			t.Fatalf("position %d: got %q, wanted %q", i, n.Channels[i].Name, name)
		}
	}
}

func TestAddChannelCaseInsensitive(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.AddChannel(channels.NewChannel("Alpha", ""))
	n.AddChannel(channels.NewChannel("zulu", ""))

	if index := n.AddChannel(channels.NewChannel("MANGO", "")); index != 2 {
		t.Fatalf("got index %d, wanted 2", index)
	}
}

func TestAddChannelSpecialBoundary(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.AddChannel(channels.NewChannel("alpha", ""))
	special := &channels.Channel{Kind: channels.KindSpecial, Name: "banlist"}
	if index := n.AddChannel(special); index != 2 {
		t.Fatalf("special entry not appended, got index %d", index)
	}

	// A name sorting after the boundary still lands before it.
	if index := n.AddChannel(channels.NewChannel("zulu", "")); index != 2 {
		t.Fatalf("got index %d, wanted 2 (before the special entry)", index)
	}
}

func TestFilteredCloneNeverLeaksPassword(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.Password = "hunter2-secret"
	n.IgnoreList = []string{"troll!*@*"}
	n.eng = newMockEngine()

	blob, err := json.Marshal(n.FilteredClone(time.Time{}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(blob), "hunter2-secret") {
		t.Fatalf("snapshot leaks the password: %s", blob)
	}
	if strings.Contains(string(blob), "troll!") {
		t.Fatalf("snapshot leaks the ignore list: %s", blob)
	}
}

func TestStatusProjection(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())

	if status := n.Status(); status.Connected || status.Secure {
		t.Fatal("absent connection must project neither flag")
	}

	mock := newMockEngine()
	mock.transport = mockTransport{connected: true, encrypted: true, verified: true, remote: "irc.example.com"}
	n.eng = mock
	if status := n.Status(); !status.Connected || !status.Secure {
		t.Fatalf("verified TLS connection not projected: %+v", status)
	}

	mock.transport = mockTransport{connected: true, remote: "127.0.0.1:6667"}
	if status := n.Status(); !status.Secure {
		t.Fatal("loopback remote must project secure")
	}

	mock.transport = mockTransport{connected: true, encrypted: true, verified: false, remote: "irc.example.com"}
	if status := n.Status(); status.Secure {
		t.Fatal("unverified TLS must not project secure")
	}
}

func TestQuitExtendsSTSExpiry(t *testing.T) {
	store := sts.NewStore()
	store.Set("irc.example.com", 6697, time.Hour)
	before, _ := store.Get("irc.example.com")

	n := newTestNetwork(testConfig(), store)
	mock := newMockEngine()
	n.eng = mock

	time.Sleep(10 * time.Millisecond)
	n.Quit("")

	after, _ := store.Get("irc.example.com")
	if !after.Expires.After(before.Expires) {
		t.Fatal("quit did not extend the policy expiry")
	}
	if len(mock.quits) != 1 || mock.quits[0] == "" {
		t.Fatalf("expected a quit with the default leave message, got %v", mock.quits)
	}
	if !n.UserDisconnected {
		t.Fatal("quit did not mark the network user disconnected")
	}
}

func TestQuitNeverConnected(t *testing.T) {
	store := sts.NewStore()
	store.Set("irc.example.com", 6697, time.Hour)
	before, _ := store.Get("irc.example.com")

	n := newTestNetwork(testConfig(), store)
	n.Quit("bye")

	after, _ := store.Get("irc.example.com")
	if !after.Expires.Equal(before.Expires) {
		t.Fatal("quit on a never-connected network touched the policy")
	}
}

func TestEditRejectedUnderLockLeavesConfigUntouched(t *testing.T) {
	config := testConfig()
	config.Perch.LockNetwork = true
	config.Perch.Public = false
	config.Defaults.Host = "irc.home.example.com"

	n := newTestNetwork(config, sts.NewStore())
	n.Host = "irc.home.example.com"
	n.Port = 6697
	n.Commands = []string{"PRIVMSG x :hi"}

	err := n.Edit(EditRequest{
		Name: "testnet",
		Nick: "perchling",
		Host: "irc.elsewhere.example.com",
		Port: "9999",
	})
	if err == nil {
		t.Fatal("edit with a foreign host accepted under lock")
	}
	if n.Host != "irc.home.example.com" {
		t.Fatalf("host mutated to %q", n.Host)
	}
	if n.Port != 6697 {
		t.Fatalf("port mutated to %d", n.Port)
	}
	if len(n.Commands) != 1 {
		t.Fatalf("commands mutated: %v", n.Commands)
	}
}

func TestEditAppliesFields(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())

	err := n.Edit(EditRequest{
		Name:     "renamed",
		Nick:     "newnick",
		Host:     "irc.example.com",
		Port:     "7000",
		Tls:      true,
		Username: "birdie",
		Realname: "A Bird",
		Commands: "PRIVMSG a :one\n\n  PRIVMSG b :two  \n",
	})
	if err != nil {
		t.Fatal(err)
	}

	if n.Port != 7000 || !n.Tls {
		t.Fatalf("transport fields not applied: port=%d tls=%v", n.Port, n.Tls)
	}
	if n.Nick != "newnick" {
		t.Fatalf("nick not applied: %q", n.Nick)
	}
	if n.Username != "birdie" {
		t.Fatalf("username not applied: %q", n.Username)
	}
	if len(n.Commands) != 2 || n.Commands[1] != "PRIVMSG b :two" {
		t.Fatalf("commands not split: %v", n.Commands)
	}
	if n.Lobby().Name != "renamed" {
		t.Fatalf("lobby name not synced: %q", n.Lobby().Name)
	}
}

func TestEditKeepsUsernameWithHashedAddresses(t *testing.T) {
	config := testConfig()
	config.Perch.UseHashedAddress = true

	n := newTestNetwork(config, sts.NewStore())
	n.Username = "original"

	err := n.Edit(EditRequest{
		Name:     "testnet",
		Nick:     "perchling",
		Host:     "irc.example.com",
		Username: "overwritten",
	})
	if err != nil {
		t.Fatal(err)
	}
	if n.Username != "original" {
		t.Fatalf("username overwritten to %q", n.Username)
	}
}

func TestEditLiveNickChange(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	mock := newMockEngine()
	mock.transport = mockTransport{connected: true}
	n.eng = mock

	err := n.Edit(EditRequest{
		Name: "testnet",
		Nick: "freshnick",
		Host: "irc.example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(mock.nicks) != 1 || mock.nicks[0] != "freshnick" {
		t.Fatalf("no live nick change sent: %v", mock.nicks)
	}
}

func TestEditLiveRename(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.Realname = "Old Name"
	mock := newMockEngine()
	mock.transport = mockTransport{connected: true}
	mock.enabled[capSetName] = true
	n.eng = mock

	err := n.Edit(EditRequest{
		Name:     "testnet",
		Nick:     "perchling",
		Host:     "irc.example.com",
		Realname: "New Name",
	})
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, raw := range mock.raws {
		if raw == "SETNAME :New Name" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no SETNAME sent: %v", mock.raws)
	}
	if mock.params.Realname != "New Name" {
		t.Fatal("engine parameters not repropagated")
	}
}

func TestConnectRequestsCapabilities(t *testing.T) {
	config := testConfig()
	config.Perch.MessageLogging = true

	mock := newMockEngine()
	deps := testDeps(config, sts.NewStore(), mock)
	deps.MessageStore = canProvide(true)

	n := New("testnet", deps)
	n.Host = "irc.example.com"
	n.SetNick("perchling")

	if err := n.Connect(); err != nil {
		t.Fatal(err)
	}

	if len(mock.requested) != 2 || mock.requested[0] != capSelfMessage || mock.requested[1] != capChatHistory {
		t.Fatalf("got capability requests %v", mock.requested)
	}
}

func TestConnectSkipsPlaybackWithoutStore(t *testing.T) {
	config := testConfig()
	config.Perch.MessageLogging = true

	mock := newMockEngine()
	deps := testDeps(config, sts.NewStore(), mock)
	deps.MessageStore = canProvide(false)

	n := New("testnet", deps)
	n.Host = "irc.example.com"
	n.SetNick("perchling")

	if err := n.Connect(); err != nil {
		t.Fatal(err)
	}

	if len(mock.requested) != 1 || mock.requested[0] != capSelfMessage {
		t.Fatalf("got capability requests %v", mock.requested)
	}
}

// canProvide implements MessageStore for testing
type canProvide bool

func (c canProvide) CanProvide() bool { return bool(c) }

func TestHandleMessageOpensQuery(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.handleMessage(engineMessage("friend!u@h", "perchling", "hello there"))

	query := n.FindChannel("friend")
	if query == nil || query.Kind != channels.KindQuery {
		t.Fatal("no query window opened for a private message")
	}
	if len(query.Messages) != 1 || query.Messages[0].Text != "hello there" {
		t.Fatalf("message not buffered: %+v", query.Messages)
	}
}

func TestHandleMessageHighlight(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.AddChannel(channels.NewChannel("#perch", ""))

	n.handleMessage(engineMessage("friend!u@h", "#perch", "hey perchling, look"))
	n.handleMessage(engineMessage("friend!u@h", "#perch", "unrelated chatter"))

	ch := n.FindChannel("#perch")
	if !ch.Messages[0].Highlight {
		t.Fatal("nick mention not highlighted")
	}
	if ch.Messages[1].Highlight {
		t.Fatal("unrelated message highlighted")
	}
}

func TestHandleMessageIgnored(t *testing.T) {
	n := newTestNetwork(testConfig(), sts.NewStore())
	n.IgnoreList = []string{"troll!*@*"}
	n.AddChannel(channels.NewChannel("#perch", ""))

	n.handleMessage(engineMessage("troll!u@h", "#perch", "spam"))

	if ch := n.FindChannel("#perch"); len(ch.Messages) != 0 {
		t.Fatalf("ignored source buffered: %+v", ch.Messages)
	}
}

func engineMessage(source, target, text string) engine.Event {
	return engine.Event{
		Type:   engine.EventMessage,
		Time:   time.Now(),
		Source: source,
		Target: target,
		Text:   text,
	}
}

func waitForState(t *testing.T, n *Network, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n.mu.Lock()
		state := n.state
		n.mu.Unlock()
		if state == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state never reached %v", want)
}

func TestQuitDuringReconnectWait(t *testing.T) {
	mock := newMockEngine()
	n := New("testnet", testDeps(testConfig(), sts.NewStore(), mock))
	n.Host = "irc.example.com"
	n.SetNick("perchling")

	if err := n.Connect(); err != nil {
		t.Fatal(err)
	}
	mock.release <- errors.New("connection reset")
	waitForState(t, n, StateReconnectWait)

	n.Quit("goodbye")
	waitForState(t, n, StateQuit)

	// Even if the cancelled timer had already fired, a dial after the
	// quit must not reach the engine.
	n.dial()

	if mock.connects != 1 {
		t.Fatalf("engine dialed %d times, wanted 1", mock.connects)
	}
	if !n.UserDisconnected {
		t.Fatal("quit did not mark the network user disconnected")
	}
	n.mu.Lock()
	eng := n.eng
	n.mu.Unlock()
	if eng != nil {
		t.Fatal("engine not released after quit")
	}
}

func TestCapabilitiesResetOnDisconnect(t *testing.T) {
	mock := newMockEngine()
	n := New("testnet", testDeps(testConfig(), sts.NewStore(), mock))
	n.Host = "irc.example.com"
	n.SetNick("perchling")

	if err := n.Connect(); err != nil {
		t.Fatal(err)
	}
	n.events <- engine.Event{Type: engine.EventCapAck, Cap: capSelfMessage}

	deadline := time.Now().Add(2 * time.Second)
	for {
		n.mu.Lock()
		acked := n.caps[capSelfMessage]
		n.mu.Unlock()
		if acked {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("capability ack never recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mock.release <- errors.New("connection reset")
	waitForState(t, n, StateReconnectWait)

	n.mu.Lock()
	stale := len(n.caps)
	n.mu.Unlock()
	if stale != 0 {
		t.Fatalf("%d capabilities survived the disconnect", stale)
	}

	n.Quit("")
}

func TestSTSPolicyDiscovery(t *testing.T) {
	store := sts.NewStore()
	n := newTestNetwork(testConfig(), store)
	n.Tls = true
	n.Port = 6697

	n.handleSTSPolicy("duration=3600,port=7000")

	policy, ok := store.Get("irc.example.com")
	if !ok {
		t.Fatal("advertised policy not recorded")
	}
	if policy.Port != 7000 || policy.Duration != time.Hour {
		t.Fatalf("got policy %+v", policy)
	}
}

func TestSTSPolicyDefaultPort(t *testing.T) {
	store := sts.NewStore()
	n := newTestNetwork(testConfig(), store)
	n.Tls = true
	n.Port = 6697

	n.handleSTSPolicy("duration=3600")

	if policy, ok := store.Get("irc.example.com"); !ok || policy.Port != 6697 {
		t.Fatalf("current port not kept: %+v", policy)
	}
}

func TestSTSPolicyRevocation(t *testing.T) {
	store := sts.NewStore()
	store.Set("irc.example.com", 6697, time.Hour)

	n := newTestNetwork(testConfig(), store)
	n.Tls = true
	n.handleSTSPolicy("duration=0")

	if _, ok := store.Get("irc.example.com"); ok {
		t.Fatal("revoked policy kept")
	}
}

func TestSTSPolicyIgnoredOnInsecureConnection(t *testing.T) {
	store := sts.NewStore()
	n := newTestNetwork(testConfig(), store)
	n.Tls = false

	n.handleSTSPolicy("duration=3600,port=6697")

	if _, ok := store.Get("irc.example.com"); ok {
		t.Fatal("policy recorded from an insecure connection")
	}
}

func TestReconnectDelayJittered(t *testing.T) {
	first := reconnectDelay()
	if first <= retryBase {
		t.Fatalf("delay %v not above the base %v", first, retryBase)
	}
	for i := 0; i < 20; i++ {
		if reconnectDelay() != first {
			return
		}
	}
	t.Fatal("20 reconnect delays were all identical")
}

func TestExportRoundTrip(t *testing.T) {
	config := testConfig()
	store := sts.NewStore()

	n := newTestNetwork(config, store)
	n.Port = 6697
	n.Tls = true
	n.Password = "serverpass"
	n.Username = "birdie"
	n.Realname = "A Bird"
	n.Commands = []string{"PRIVMSG x :hi"}
	n.AddChannel(channels.NewChannel("#perch", "key"))
	n.AddChannel(channels.NewQuery("friend"))
	n.Lobby().PushSystem("transient")

	restored := FromExport(n.Export(), testDeps(config, store, newMockEngine()))

	if restored.ID != n.ID || restored.Host != n.Host || restored.Password != n.Password {
		t.Fatal("core fields lost in round trip")
	}
	if len(restored.Channels) != 3 {
		t.Fatalf("got %d channels, wanted 3", len(restored.Channels))
	}
	if restored.Channels[0].Kind != channels.KindLobby {
		t.Fatal("lobby not first after restore")
	}
	if ch := restored.FindChannel("#perch"); ch == nil || ch.Key != "key" {
		t.Fatal("channel key lost")
	}
	if len(restored.Lobby().Messages) != 0 {
		t.Fatal("message history leaked into persistence")
	}
}

func TestExportForEditReduced(t *testing.T) {
	config := testConfig()
	config.Perch.DisplayNetwork = false

	n := newTestNetwork(config, sts.NewStore())
	view, ok := n.ExportForEdit().(ReducedEditView)
	if !ok {
		t.Fatalf("got %T, wanted ReducedEditView", n.ExportForEdit())
	}
	if view.Nick != "perchling" {
		t.Fatalf("got nick %q", view.Nick)
	}
}

func TestExportForEditFull(t *testing.T) {
	config := testConfig()
	config.Perch.DisplayNetwork = true
	store := sts.NewStore()
	store.Set("irc.example.com", 6697, time.Hour)

	n := newTestNetwork(config, store)
	view, ok := n.ExportForEdit().(EditView)
	if !ok {
		t.Fatalf("got %T, wanted EditView", n.ExportForEdit())
	}
	if view.Host != "irc.example.com" {
		t.Fatalf("got host %q", view.Host)
	}
	if !view.HasSTSPolicy {
		t.Fatal("hasSTSPolicy not derived")
	}
}
