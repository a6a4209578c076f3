package session

import "sync"

// Store is the per-user state access point. The default implementation is
// volatile; a durable backend swaps in behind this interface.
type Store interface {
	// Get returns the state for key, creating it lazily on first access.
	Get(key string) *State
	// Put replaces the state for key.
	Put(key string, state *State)
	// Delete removes the state for key.
	Delete(key string)
}

// Locker serializes turns per user key. Lock blocks until the key is free
// and returns the corresponding unlock.
type Locker interface {
	Lock(key string) (unlock func())
}

// Defaults seed newly created states.
type Defaults struct {
	ModelID      string
	HistoryLimit int
}

// MemoryStore is the in-process Store and Locker implementation.
type MemoryStore struct {
	mu       sync.Mutex
	states   map[string]*State
	locks    map[string]*sync.Mutex
	defaults Defaults
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(defaults Defaults) *MemoryStore {
	return &MemoryStore{
		states:   map[string]*State{},
		locks:    map[string]*sync.Mutex{},
		defaults: defaults,
	}
}

// Get returns the state for key, creating a fresh one with the configured
// defaults on first access.
func (m *MemoryStore) Get(key string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.states[key]; ok {
		return state
	}
	state := &State{
		ModelID:      m.defaults.ModelID,
		HistoryLimit: m.defaults.HistoryLimit,
		EnabledTools: map[string]bool{},
	}
	m.states[key] = state
	return state
}

// Put replaces the state for key.
func (m *MemoryStore) Put(key string, state *State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[key] = state
}

// Delete removes the state for key.
func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, key)
}

// Count returns the number of active sessions.
func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// Lock serializes turn processing for one user key. Overlapping updates from
// the same user wait rather than interleaving history mutations.
func (m *MemoryStore) Lock(key string) func() {
	m.mu.Lock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	m.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}
