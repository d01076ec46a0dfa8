package networks

import (
	"regexp"
	"strings"

	"perch/helpers"
	"perch/irc/channels"

	"github.com/google/uuid"
)

// New creates a network with its pinned lobby entry. The identifier is
// process-unique and immutable from here on.
func New(name string, deps Deps) *Network {
	n := &Network{
		ID:       uuid.NewString(),
		Name:     name,
		deps:     deps,
		caps:     make(map[string]bool),
		Channels: []*channels.Channel{channels.NewLobby(name)},
	}
	return n
}

// Lobby returns the pinned first entry. It always exists.
func (n *Network) Lobby() *channels.Channel {
	return n.Channels[0]
}

// SetNick updates the nick and recomputes the derived highlight pattern.
func (n *Network) SetNick(nick string) {
	n.Nick = nick
	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(nick) + `\b`)
	if err != nil {
		pattern = nil
	}
	n.highlight = pattern
}

// Highlights reports whether a message text mentions the current nick.
func (n *Network) Highlights(text string) bool {
	return n.highlight != nil && n.highlight.MatchString(text)
}

// AddChannel inserts an entry and returns the index used. Channel and
// query entries are kept case-insensitively sorted among themselves,
// scanning from index 1 since the lobby is pinned at 0. Entries of any
// other kind act as a sort boundary and are themselves appended at the
// end.
func (n *Network) AddChannel(ch *channels.Channel) int {
	if !ch.Sortable() {
		n.Channels = append(n.Channels, ch)
		return len(n.Channels) - 1
	}

	index := len(n.Channels)
	name := strings.ToLower(ch.Name)
	for i := 1; i < len(n.Channels); i++ {
		other := n.Channels[i]
		if !other.Sortable() || strings.ToLower(other.Name) >= name {
			index = i
			break
		}
	}

	n.Channels = append(n.Channels, nil)
	copy(n.Channels[index+1:], n.Channels[index:])
	n.Channels[index] = ch
	return index
}

// FindChannel returns the entry with the given name, or nil.
func (n *Network) FindChannel(name string) *channels.Channel {
	for _, ch := range n.Channels {
		if strings.EqualFold(ch.Name, name) {
			return ch
		}
	}
	return nil
}

// RemoveChannel drops an entry. The lobby is never removed.
func (n *Network) RemoveChannel(ch *channels.Channel) bool {
	for i, existing := range n.Channels {
		if existing == ch && i > 0 {
			n.Channels = append(n.Channels[:i], n.Channels[i+1:]...)
			return true
		}
	}
	return false
}

// Ignores reports whether a source (nick!ident@host) matches any mask on
// the ignore list.
func (n *Network) Ignores(source string) bool {
	for _, mask := range n.IgnoreList {
		if helpers.MatchMask(mask, source) {
			return true
		}
	}
	return false
}

func (n *Network) notifyChange() {
	if n.deps.OnChange != nil {
		n.deps.OnChange(n)
	}
}

func (n *Network) save() {
	if n.deps.OnSave != nil {
		n.deps.OnSave()
	}
}
