// Package connectivity tracks whether the client believes it is online.
//
// The flag is a heuristic: online does not guarantee the backend is reachable,
// it only means the last reported state was online.
package connectivity

import "sync"

// Monitor holds the online flag and notifies listeners on transitions.
type Monitor struct {
	mu        sync.RWMutex
	online    bool
	listeners []func(online bool)
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

// Online reports the current flag.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Set updates the flag. Listeners run only when the value changes, outside the lock,
// in registration order.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(bool), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(online)
	}
}

// OnChange registers fn to run on every transition.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}
