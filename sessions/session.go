package sessions

import (
	"encoding/json"
	"time"

	"perch/irc/networks"
	"perch/logger"
)

// networkDeps wires a network's collaborators back into this session:
// saves land on the account record, change notifications carry the
// account name.
func (s *Session) networkDeps() networks.Deps {
	deps := s.baseDeps
	deps.OnSave = s.Save
	deps.OnChange = s.notify
	return deps
}

// AddNetwork creates, validates and registers a new network from user
// input. On validation failure the network is still returned so its
// lobby carries the error, but it is not connected.
func (s *Session) AddNetwork(req networks.EditRequest) (*networks.Network, error) {
	network := networks.New(req.Name, s.networkDeps())

	if err := network.Edit(req); err != nil {
		return network, err
	}

	s.mu.Lock()
	s.Networks = append(s.Networks, network)
	s.mu.Unlock()

	s.Save()
	return network, nil
}

// FindNetwork looks a network up by its identifier.
func (s *Session) FindNetwork(id string) *networks.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, network := range s.Networks {
		if network.ID == id {
			return network
		}
	}
	return nil
}

// RemoveNetwork quits and forgets a network.
func (s *Session) RemoveNetwork(id string) bool {
	s.mu.Lock()
	index := -1
	for i, network := range s.Networks {
		if network.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return false
	}
	network := s.Networks[index]
	s.Networks = append(s.Networks[:index], s.Networks[index+1:]...)
	s.mu.Unlock()

	network.Quit("")
	s.Save()
	return true
}

// DataToSave assembles the full account record, with networks replaced
// by their persisted form.
func (s *Session) DataToSave() Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := Account{
		Password: s.PasswordHash,
		Log:      s.Log,
		Prefs:    s.Prefs,
		Networks: make([]networks.Exported, 0, len(s.Networks)),
	}
	for _, network := range s.Networks {
		account.Networks = append(account.Networks, network.Export())
	}
	return account
}

// Save schedules a persistence write. Writes triggered in quick
// succession collapse into one; the write itself is fire-and-forget
// from the caller's perspective.
func (s *Session) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveTimer == nil {
		s.saveTimer = time.AfterFunc(saveDelay, func() {
			if err := s.SaveNow(); err != nil {
				logger.Account(s.Name).Error("Error saving account", "error", err)
			}
		})
		return
	}
	s.saveTimer.Reset(saveDelay)
}

// SaveNow writes the account record immediately. Writes for one account
// are serialized so an edit and an autosave cannot race into a lost
// update. A failed save leaves the in-memory session usable.
func (s *Session) SaveNow() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	blob, err := json.Marshal(s.DataToSave())
	if err != nil {
		return err
	}
	return s.store.Save(s.Name, blob)
}

// Shutdown closes every network connection without marking them user
// disconnected, so they reconnect on the next start.
func (s *Session) Shutdown(message string) {
	s.mu.Lock()
	nets := append([]*networks.Network(nil), s.Networks...)
	s.mu.Unlock()

	for _, network := range nets {
		network.Disconnect(message)
	}
}

// FilteredNetworks projects every network through the sync whitelist.
func (s *Session) FilteredNetworks(lastSeen time.Time) []networks.FilteredView {
	s.mu.Lock()
	nets := append([]*networks.Network(nil), s.Networks...)
	s.mu.Unlock()

	views := make([]networks.FilteredView, 0, len(nets))
	for _, network := range nets {
		views = append(views, network.FilteredClone(lastSeen))
	}
	return views
}
