package channels

import (
	"time"
)

func NewLobby(name string) *Channel {
	return &Channel{Kind: KindLobby, Name: name}
}

func NewChannel(name, key string) *Channel {
	return &Channel{Kind: KindChannel, Name: name, Key: key}
}

func NewQuery(name string) *Channel {
	return &Channel{Kind: KindQuery, Name: name}
}

// Sortable reports whether this entry participates in the
// case-insensitive name ordering. The lobby and special windows do not.
func (c *Channel) Sortable() bool {
	return c.Kind == KindChannel || c.Kind == KindQuery
}

// Push appends a message, dropping the oldest once the buffer is full.
func (c *Channel) Push(msg Message) {
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}
	c.mu.Lock()
	c.Messages = append(c.Messages, msg)
	if len(c.Messages) > MessageLimit {
		c.Messages = c.Messages[len(c.Messages)-MessageLimit:]
	}
	c.mu.Unlock()
}

// PushSystem records a system notice, used for user-visible
// configuration messages on the lobby.
func (c *Channel) PushSystem(text string) {
	c.Push(Message{Type: MessageSystem, Text: text})
}

// PushError records a user-visible error.
func (c *Channel) PushError(text string) {
	c.Push(Message{Type: MessageError, Text: text})
}

func (c *Channel) AddUser(nick string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.Users {
		if existing == nick {
			return
		}
	}
	c.Users = append(c.Users, nick)
}

func (c *Channel) RemoveUser(nick string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.Users {
		if existing == nick {
			c.Users = append(c.Users[:i], c.Users[i+1:]...)
			return
		}
	}
}

// FilteredView is the client-safe projection of a channel. The join key
// never leaves the process through this type.
type FilteredView struct {
	Kind     Kind      `json:"kind"`
	Name     string    `json:"name"`
	Users    []string  `json:"users,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// FilteredClone produces the whitelisted view sent to attached clients.
// lastSeen bounds the replayed message buffer; zero means everything.
func (c *Channel) FilteredClone(lastSeen time.Time) FilteredView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := FilteredView{
		Kind:  c.Kind,
		Name:  c.Name,
		Users: append([]string(nil), c.Users...),
	}
	for _, msg := range c.Messages {
		if !lastSeen.IsZero() && !msg.Time.After(lastSeen) {
			continue
		}
		view.Messages = append(view.Messages, msg)
	}
	return view
}

// Exported is the persistence shape of a channel: enough to rejoin it,
// never its history or membership.
type Exported struct {
	Name string `json:"name"`
	Key  string `json:"key,omitempty"`
	Type string `json:"type,omitempty"`
}

// Export reduces the channel to its persisted form. Lobby and special
// windows are recreated at load time and return false.
func (c *Channel) Export() (Exported, bool) {
	switch c.Kind {
	case KindChannel:
		return Exported{Name: c.Name, Key: c.Key}, true
	case KindQuery:
		return Exported{Name: c.Name, Type: string(KindQuery)}, true
	default:
		return Exported{}, false
	}
}
