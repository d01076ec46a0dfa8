package networks

import (
	"sort"
	"time"

	"perch/irc/channels"
	"perch/irc/engine"
)

type (
	// Status is the live connection projection sent to clients.
	Status struct {
		Connected bool `json:"connected"`
		Secure    bool `json:"secure"`
	}

	// FilteredView is the client-safe snapshot of a network. This is a
	// security boundary: the password, the ignore list and the raw
	// connection handle never appear here.
	FilteredView struct {
		ID           string                  `json:"identifier"`
		DisplayName  string                  `json:"displayName"`
		Nick         string                  `json:"nick"`
		Capabilities []string                `json:"protocolCapabilities"`
		Status       Status                  `json:"status"`
		Channels     []channels.FilteredView `json:"channels"`
	}
)

// Status inspects the live transport. A connection is secure when it is
// encrypted with a verified peer, or when the remote endpoint is the
// loopback address. No connection means neither flag is set.
func (n *Network) Status() Status {
	n.mu.Lock()
	eng := n.eng
	n.mu.Unlock()

	if eng == nil {
		return Status{}
	}

	t := eng.Transport()
	return Status{
		Connected: t.IsConnected(),
		Secure:    (t.Encrypted() && t.PeerVerified()) || engine.IsLoopback(t.RemoteAddress()),
	}
}

// FilteredClone builds the whitelisted snapshot for one attached
// client. Each channel contributes its own filtered view with the same
// lastSeen horizon.
func (n *Network) FilteredClone(lastSeen time.Time) FilteredView {
	n.mu.Lock()
	caps := make([]string, 0, len(n.caps))
	for name, enabled := range n.caps {
		if enabled {
			caps = append(caps, name)
		}
	}
	sort.Strings(caps)

	views := make([]channels.FilteredView, 0, len(n.Channels))
	for _, ch := range n.Channels {
		views = append(views, ch.FilteredClone(lastSeen))
	}

	view := FilteredView{
		ID:           n.ID,
		DisplayName:  n.Name,
		Nick:         n.Nick,
		Capabilities: caps,
		Channels:     views,
	}
	n.mu.Unlock()

	view.Status = n.Status()
	return view
}
