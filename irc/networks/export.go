package networks

import (
	"strings"

	"perch/irc/channels"
)

type (
	// Exported is the persistence shape of one network: the fields
	// needed to reconstruct it, channels reduced to the minimum needed
	// to rejoin. Message history and transient state are never
	// persisted here.
	Exported struct {
		ID               string              `json:"uuid"`
		Name             string              `json:"name"`
		Nick             string              `json:"nick"`
		Host             string              `json:"host"`
		Port             int                 `json:"port"`
		Tls              bool                `json:"tls"`
		VerifyCert       bool                `json:"verifyCert"`
		Password         string              `json:"password"`
		Username         string              `json:"username"`
		Realname         string              `json:"realname"`
		AwayMessage      string              `json:"awayMessage,omitempty"`
		Commands         []string            `json:"commands,omitempty"`
		UserDisconnected bool                `json:"userDisconnected"`
		IgnoreList       []string            `json:"ignoreList,omitempty"`
		Channels         []channels.Exported `json:"channels"`
	}

	// EditView is the full editable field set handed to the owning
	// user when the deployment displays network identity.
	EditView struct {
		ID           string `json:"identifier"`
		Name         string `json:"name"`
		Nick         string `json:"nick"`
		Host         string `json:"host"`
		Port         int    `json:"port"`
		Tls          bool   `json:"tls"`
		VerifyCert   bool   `json:"verifyCert"`
		Password     string `json:"password"`
		Username     string `json:"username"`
		Realname     string `json:"realname"`
		Commands     string `json:"commands"`
		HasSTSPolicy bool   `json:"hasSTSPolicy"`
	}

	// ReducedEditView is the field set for deployments that hide the
	// network from its own user.
	ReducedEditView struct {
		ID       string `json:"identifier"`
		Name     string `json:"name"`
		Nick     string `json:"nick"`
		Username string `json:"username"`
		Password string `json:"password"`
		Realname string `json:"realname"`
	}
)

// Export reduces the network to its persisted form.
func (n *Network) Export() Exported {
	n.mu.Lock()
	defer n.mu.Unlock()

	exported := Exported{
		ID:               n.ID,
		Name:             n.Name,
		Nick:             n.Nick,
		Host:             n.Host,
		Port:             n.Port,
		Tls:              n.Tls,
		VerifyCert:       n.VerifyCert,
		Password:         n.Password,
		Username:         n.Username,
		Realname:         n.Realname,
		AwayMessage:      n.AwayMessage,
		Commands:         append([]string(nil), n.Commands...),
		UserDisconnected: n.UserDisconnected,
		IgnoreList:       append([]string(nil), n.IgnoreList...),
		Channels:         []channels.Exported{},
	}

	for _, ch := range n.Channels {
		if reduced, ok := ch.Export(); ok {
			exported.Channels = append(exported.Channels, reduced)
		}
	}
	return exported
}

// ExportForEdit returns the editable view of this network appropriate
// for the deployment: the full transport fields when network identity
// is displayed to the owning user, a reduced identity-only set
// otherwise.
func (n *Network) ExportForEdit() any {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.deps.Config.Perch.DisplayNetwork {
		return ReducedEditView{
			ID:       n.ID,
			Name:     n.Name,
			Nick:     n.Nick,
			Username: n.Username,
			Password: n.Password,
			Realname: n.Realname,
		}
	}

	_, hasSTS := n.deps.STS.Get(n.Host)
	return EditView{
		ID:           n.ID,
		Name:         n.Name,
		Nick:         n.Nick,
		Host:         n.Host,
		Port:         n.Port,
		Tls:          n.Tls,
		VerifyCert:   n.VerifyCert,
		Password:     n.Password,
		Username:     n.Username,
		Realname:     n.Realname,
		Commands:     strings.Join(n.Commands, "\n"),
		HasSTSPolicy: hasSTS,
	}
}

// FromExport reconstructs a network from its persisted form, recreating
// the lobby and re-adding channels in order.
func FromExport(exported Exported, deps Deps) *Network {
	n := New(exported.Name, deps)
	if exported.ID != "" {
		n.ID = exported.ID
	}
	n.SetNick(exported.Nick)
	n.Host = exported.Host
	n.Port = exported.Port
	n.Tls = exported.Tls
	n.VerifyCert = exported.VerifyCert
	n.Password = exported.Password
	n.Username = exported.Username
	n.Realname = exported.Realname
	n.AwayMessage = exported.AwayMessage
	n.Commands = exported.Commands
	n.UserDisconnected = exported.UserDisconnected
	n.IgnoreList = exported.IgnoreList

	for _, ch := range exported.Channels {
		if ch.Type == string(channels.KindQuery) {
			n.AddChannel(channels.NewQuery(ch.Name))
		} else {
			n.AddChannel(channels.NewChannel(ch.Name, ch.Key))
		}
	}
	return n
}
