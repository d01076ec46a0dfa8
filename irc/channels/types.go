package channels

import (
	"sync"
	"time"
)

type (
	Kind string

	// Channel is one entity in a network's window list: the lobby, a
	// joined channel, an open private query or a special window.
	Channel struct {
		Kind Kind   `json:"kind"`
		Name string `json:"name"`
		Key  string `json:"key,omitempty"`

		// Nicks present, owned by entries of kind channel.
		Users []string `json:"users,omitempty"`

		Messages []Message `json:"messages,omitempty"`

		// Guards Users and Messages: the network event loop appends
		// while client snapshots read.
		mu sync.Mutex
	}

	MessageType string

	Message struct {
		Type MessageType `json:"type"`
		Time time.Time   `json:"time"`
		From string      `json:"from,omitempty"`
		Text string      `json:"text"`

		Highlight bool `json:"highlight,omitempty"`
	}
)

const (
	KindLobby   Kind = "lobby"
	KindChannel Kind = "channel"
	KindQuery   Kind = "query"
	KindSpecial Kind = "special"

	MessageNormal MessageType = "message"
	MessageNotice MessageType = "notice"
	MessageSystem MessageType = "system"
	MessageError  MessageType = "error"
)

// Buffered messages kept per channel. Oldest entries fall off first.
const MessageLimit = 500
