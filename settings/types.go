package settings

import (
	"perch/logger"
)

type (
	Config struct {
		Perch    Perch         `toml:"perch" validate:"required"`
		Defaults Defaults      `toml:"defaults" validate:"required"`
		Store    Store         `toml:"store"`
		Sync     Sync          `toml:"sync"`
		Logging  logger.Config `toml:"logging" validate:"required"`
	}

	// Perch holds the administrator policy for the bouncer itself.
	Perch struct {
		// When set, users may only connect to the network described by
		// Defaults. Combined with Public, the submitted host is silently
		// replaced rather than rejected.
		LockNetwork bool `toml:"lockNetwork"`
		Public      bool `toml:"public"`

		// Expose host/port/tls fields of a network to its owning user.
		DisplayNetwork bool `toml:"displayNetwork"`

		// Replace the username sent to networks with a hash of the
		// client's remote address.
		UseHashedAddress bool `toml:"useHashedAddress"`

		LeaveMessage string `toml:"leaveMessage"`

		// Source address outgoing connections bind to. Empty means any.
		Bind string `toml:"bind"`

		WebIRC map[string]string `toml:"webirc"`

		MessageLogging bool `toml:"messageLogging"`
	}

	// Defaults are applied to fields the user left blank, and enforced
	// wholesale when LockNetwork is on.
	Defaults struct {
		Name       string `toml:"name"`
		Nick       string `toml:"nick" validate:"required"`
		Username   string `toml:"username"`
		Host       string `toml:"host"`
		Port       int    `toml:"port" validate:"gte=0,lte=65535"`
		Tls        bool   `toml:"tls"`
		VerifyCert bool   `toml:"verifyCert"`
	}

	Store struct {
		Path string `toml:"path"`
	}

	Sync struct {
		Enabled bool   `toml:"enabled"`
		Listen  string `toml:"listen"`
	}
)
