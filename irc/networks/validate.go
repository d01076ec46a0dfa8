package networks

import (
	"errors"
	"fmt"
	"strings"

	"perch/helpers"
)

// Validate normalizes user-supplied configuration in place and decides
// whether a connection attempt may proceed. Failures are surfaced as a
// message on the lobby and returned; the caller must not connect.
//
// Host and port overrides from an STS policy are applied only after the
// empty-host check passes, so a rejected configuration keeps its
// submitted transport fields.
func (n *Network) Validate() error {
	conf := n.deps.Config

	nick := helpers.CleanNick(n.Nick)
	if nick == "" {
		nick = conf.Defaults.Nick
	}
	n.SetNick(nick)

	if n.Username == "" {
		n.Username = helpers.AlphaNumeric(nick)
	}
	n.Username = helpers.CleanString(n.Username, 300)
	if n.Username == "" {
		n.Username = conf.Defaults.Username
	}

	n.Realname = helpers.CleanString(n.Realname, 300)
	if n.Realname == "" {
		n.Realname = nick
	}

	n.Password = helpers.CleanString(n.Password, 300)
	n.Host = strings.ToLower(helpers.CleanString(n.Host, 300))

	n.Name = helpers.CleanString(n.Name, 300)
	if n.Name == "" {
		n.Name = n.Host
	}

	if n.Port == 0 {
		if n.Tls {
			n.Port = 6697
		} else {
			n.Port = 6667
		}
	}

	if conf.Perch.LockNetwork {
		// This check is only needed on non-public servers since public
		// ones force the host without ever rejecting.
		if !conf.Perch.Public && n.Host != "" && n.Host != conf.Defaults.Host {
			return n.configError("Hostname you specified is not allowed.")
		}
		n.Host = conf.Defaults.Host
		n.Port = conf.Defaults.Port
		n.Tls = conf.Defaults.Tls
		n.VerifyCert = conf.Defaults.VerifyCert
	}

	if n.Host == "" {
		return n.configError("You must specify a hostname to connect.")
	}

	if policy, ok := n.deps.STS.Get(n.Host); ok && !n.Tls {
		n.Port = policy.Port
		n.Tls = true
		n.VerifyCert = true
		n.Lobby().PushSystem(fmt.Sprintf(
			"Strict transport security policy is enforced for this network, connection upgraded to port %d over a secure connection.",
			policy.Port))
	}

	return nil
}

// configError delivers a user-visible configuration error to the lobby
// and returns it. Configuration errors are never raised as faults.
func (n *Network) configError(text string) error {
	n.Lobby().PushError(text)
	n.notifyChange()
	return errors.New(text)
}
