package app

import (
	"sync"

	"github.com/replyhq/reply/internal/model"
)

// Manager owns the state for every device the server has seen.
type Manager struct {
	mu        sync.Mutex
	states    map[string]*State
	onHistory func(deviceID string, history []model.Conversation)
}

// NewManager creates a state manager. onHistory, if set, runs after every
// history mutation of any device's state.
func NewManager(onHistory func(deviceID string, history []model.Conversation)) *Manager {
	return &Manager{
		states:    make(map[string]*State),
		onHistory: onHistory,
	}
}

// Get returns the state for deviceID, creating it on first use.
func (m *Manager) Get(deviceID string) *State {
	st, _ := m.GetOrCreate(deviceID)
	return st
}

// GetOrCreate returns the state for deviceID and whether it was created by
// this call.
func (m *Manager) GetOrCreate(deviceID string) (*State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[deviceID]; ok {
		return st, false
	}
	var hook func([]model.Conversation)
	if m.onHistory != nil {
		onHistory := m.onHistory
		hook = func(history []model.Conversation) {
			onHistory(deviceID, history)
		}
	}
	st := NewState(hook)
	m.states[deviceID] = st
	return st, true
}
