package sts

import (
	"sync"
	"time"
)

type (
	// Policy is one host's strict transport security instruction: connect
	// to Port over TLS until Expires.
	Policy struct {
		Port     int           `json:"port"`
		Duration time.Duration `json:"duration"`
		Expires  time.Time     `json:"expires"`
	}

	Store struct {
		mu       sync.RWMutex
		policies map[string]Policy
	}
)

func (p Policy) Expired(now time.Time) bool {
	return !p.Expires.After(now)
}
