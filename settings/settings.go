package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// LoadConfig loads the configuration from the config.toml file.
// It returns a pointer to the Config struct or an error if loading fails.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Get absolute path for better error messages
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		absPath = configPath // fallback to relative path
	}

	_, err = toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", absPath, err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ApplyDefaults fills every optional field the file left blank, one field
// at a time so each default is visible here rather than buried in TOML.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Defaults.Nick == "" {
		c.Defaults.Nick = "perch"
	}
	if c.Defaults.Username == "" {
		c.Defaults.Username = "perch"
	}
	if c.Defaults.Port == 0 {
		if c.Defaults.Tls {
			c.Defaults.Port = 6697
		} else {
			c.Defaults.Port = 6667
		}
	}
	if c.Perch.LeaveMessage == "" {
		c.Perch.LeaveMessage = "The Perch - https://perch.chat"
	}
	if c.Store.Path == "" {
		c.Store.Path = "perch.db"
	}
	if c.Sync.Listen == "" {
		c.Sync.Listen = "127.0.0.1:9000"
	}
}

// WebIRCPassword returns the gateway password configured for a host, or
// empty when the administrator configured none.
func (c *Config) WebIRCPassword(host string) string {
	if c.Perch.WebIRC == nil {
		return ""
	}
	return c.Perch.WebIRC[host]
}
