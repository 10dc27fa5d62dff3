package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tower-server/internal/domain"
)

// JSONStore хранит каждую сессию в отдельном файле session_<id>.json.
type JSONStore struct {
	dir string
	mu  sync.Mutex
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save dir: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

func (js *JSONStore) path(id string) string {
	return filepath.Join(js.dir, "session_"+filepath.Base(id)+".json")
}

func (js *JSONStore) Save(_ context.Context, state *domain.SessionState) error {
	if state.ID == "" {
		return errors.New("session id is empty")
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	// Пишем во временный файл и переименовываем, чтобы не оставить обрезанный сейв
	target := js.path(state.ID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return os.Rename(tmp, target)
}

func (js *JSONStore) Load(_ context.Context, id string) (*domain.SessionState, error) {
	js.mu.Lock()
	defer js.mu.Unlock()

	data, err := os.ReadFile(js.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	return &state, nil
}

func (js *JSONStore) Close() error { return nil }
