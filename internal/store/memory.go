package store

import (
	"sync"

	"kinlab-backend/internal/model"
)

type MemoryStore struct {
	mu         sync.RWMutex
	session    *model.Session
	generation uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Active() (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil, model.ErrNoActiveSession
	}

	return m.session, nil
}

func (m *MemoryStore) Replace(session *model.Session) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = session
	m.generation++
	return m.generation
}

func (m *MemoryStore) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.generation
}
