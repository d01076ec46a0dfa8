package networks

import (
	"strconv"
	"strings"
)

// EditRequest carries the raw field set submitted by a client when
// editing a network. Values arrive as the client sent them; parsing and
// sanitization happen here and in Validate.
type EditRequest struct {
	Name        string
	Nick        string
	Host        string
	Port        string
	Tls         bool
	VerifyCert  bool
	Password    string
	Username    string
	Realname    string
	AwayMessage string
	Commands    string
	IgnoreList  []string
}

// Edit replaces the mutable configuration from user input and
// re-validates. A rejected edit leaves the previously committed
// configuration untouched and has no connection side effects. An
// accepted edit is pushed into the live connection where the protocol
// allows, propagated into the engine parameters used by the next
// reconnect, and triggers a persistence save.
func (n *Network) Edit(req EditRequest) error {
	// Validation runs on a staging copy so a rejected edit leaves the
	// committed configuration untouched. The channel list is shared:
	// validation errors still land on the real lobby.
	n.mu.Lock()
	staged := &Network{
		ID:          n.ID,
		deps:        n.deps,
		Channels:    n.Channels,
		Name:        req.Name,
		Nick:        req.Nick,
		Host:        req.Host,
		Tls:         req.Tls,
		VerifyCert:  req.VerifyCert,
		Password:    req.Password,
		Username:    req.Username,
		Realname:    req.Realname,
		AwayMessage: req.AwayMessage,
		IgnoreList:  req.IgnoreList,
	}
	n.mu.Unlock()

	staged.Port = 0
	if port, err := strconv.Atoi(strings.TrimSpace(req.Port)); err == nil && port > 0 && port <= 65535 {
		staged.Port = port
	}

	staged.Commands = nil
	for _, line := range strings.Split(req.Commands, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			staged.Commands = append(staged.Commands, line)
		}
	}

	if err := staged.Validate(); err != nil {
		return err
	}

	n.mu.Lock()
	oldNick := n.Nick
	oldRealname := n.Realname

	n.Name = staged.Name
	n.Host = staged.Host
	n.Port = staged.Port
	n.Tls = staged.Tls
	n.VerifyCert = staged.VerifyCert
	n.Password = staged.Password
	n.Realname = staged.Realname
	n.AwayMessage = staged.AwayMessage
	n.Commands = staged.Commands
	n.IgnoreList = staged.IgnoreList
	if !n.deps.Config.Perch.UseHashedAddress {
		n.Username = staged.Username
	}

	// The lobby mirrors the network's display name.
	n.Channels[0].Name = n.Name

	eng := n.eng
	nickChanged := staged.Nick != oldNick
	newNick := staged.Nick
	n.mu.Unlock()

	if nickChanged {
		if eng != nil && eng.Transport().IsConnected() {
			eng.ChangeNick(newNick)
			n.mu.Lock()
			n.SetNick(newNick)
			n.mu.Unlock()
		} else {
			n.mu.Lock()
			n.SetNick(newNick)
			n.mu.Unlock()
			n.notifyChange()
		}
	}

	if eng != nil {
		if staged.Realname != oldRealname && eng.CapEnabled(capSetName) {
			eng.Raw("SETNAME :" + staged.Realname)
		}
		// The live engine keeps running on its old transport; the new
		// parameters take effect on the next reconnect.
		eng.SetParams(n.EngineParams())
	}

	n.notifyChange()
	n.save()
	return nil
}
