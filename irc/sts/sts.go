package sts

import (
	"encoding/json"
	"strings"
	"time"

	"perch/logger"
	"perch/perchbase"

	"github.com/hako/durafmt"
)

const storeKey = "sts:policies"

func NewStore() *Store {
	return &Store{policies: make(map[string]Policy)}
}

// Get returns the policy for a host. Expired policies are treated as
// absent and removed on access.
func (s *Store) Get(host string) (Policy, bool) {
	host = strings.ToLower(host)

	s.mu.Lock()
	defer s.mu.Unlock()

	policy, ok := s.policies[host]
	if !ok {
		return Policy{}, false
	}
	if policy.Expired(time.Now()) {
		delete(s.policies, host)
		return Policy{}, false
	}
	return policy, true
}

// Set stores or overwrites the policy for a host, computing its expiry
// from now.
func (s *Store) Set(host string, port int, duration time.Duration) {
	host = strings.ToLower(host)

	s.mu.Lock()
	s.policies[host] = Policy{
		Port:     port,
		Duration: duration,
		Expires:  time.Now().Add(duration),
	}
	s.mu.Unlock()

	logger.Info("Cached STS policy",
		"host", host,
		"port", port,
		"duration", durafmt.Parse(duration).LimitFirstN(2).String())
}

// Remove drops a host's policy, used when the server revokes it by
// advertising a zero duration.
func (s *Store) Remove(host string) {
	host = strings.ToLower(host)

	s.mu.Lock()
	_, ok := s.policies[host]
	delete(s.policies, host)
	s.mu.Unlock()

	if ok {
		logger.Info("Dropped STS policy", "host", host)
	}
}

// RefreshExpiration reschedules a host's expiry window from now using the
// policy's original duration. No-op when the policy is absent or already
// expired.
func (s *Store) RefreshExpiration(host string) bool {
	host = strings.ToLower(host)

	s.mu.Lock()
	defer s.mu.Unlock()

	policy, ok := s.policies[host]
	if !ok || policy.Expired(time.Now()) {
		return false
	}
	policy.Expires = time.Now().Add(policy.Duration)
	s.policies[host] = policy
	return true
}

// Load restores the persisted policy snapshot, dropping entries that
// expired while the process was down.
func (s *Store) Load() {
	if !perchbase.Has(storeKey) {
		return
	}
	blob, err := perchbase.Get(storeKey)
	if err != nil {
		logger.Error("Error loading STS policies", "error", err)
		return
	}

	policies := make(map[string]Policy)
	if err := json.Unmarshal(blob, &policies); err != nil {
		logger.Error("Error unmarshalling STS policies", "error", err)
		return
	}

	now := time.Now()
	s.mu.Lock()
	for host, policy := range policies {
		if !policy.Expired(now) {
			s.policies[host] = policy
		}
	}
	s.mu.Unlock()
}

// Save persists the current snapshot.
func (s *Store) Save() {
	s.mu.RLock()
	blob, err := json.Marshal(s.policies)
	s.mu.RUnlock()
	if err != nil {
		logger.Error("Error marshalling STS policies", "error", err)
		return
	}
	if err := perchbase.PutBytes(storeKey, blob); err != nil {
		logger.Error("Error saving STS policies", "error", err)
	}
}
