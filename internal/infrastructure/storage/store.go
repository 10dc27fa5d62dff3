package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tower-server/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore - хранилище сохранений сессии.
type SessionStore interface {
	Save(ctx context.Context, state *domain.SessionState) error
	Load(ctx context.Context, id string) (*domain.SessionState, error)
	Close() error
}

// Open выбирает реализацию по типу из конфига.
func Open(kind, path, databaseURL string) (SessionStore, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "json":
		return NewJSONStore(path)
	case "postgres":
		return NewPostgresStore(databaseURL)
	}
	return nil, fmt.Errorf("unknown store kind: %q", kind)
}

// MemoryStore - сохранения в памяти процесса (для тестов и локальной игры).
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.SessionState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.SessionState)}
}

func (m *MemoryStore) Save(_ context.Context, state *domain.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[state.ID] = cloneState(state)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*domain.SessionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	out := cloneState(&st)
	return &out, nil
}

func (m *MemoryStore) Close() error { return nil }

// cloneState копирует состояние вместе со снимком игрока.
func cloneState(s *domain.SessionState) domain.SessionState {
	out := *s
	if s.Player != nil {
		p := *s.Player
		out.Player = &p
	}
	return out
}
