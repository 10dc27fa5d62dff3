package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tower-server/internal/domain"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore хранит сохранения в таблице sessions.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		portal JSONB NOT NULL,
		player JSONB,
		seed BIGINT NOT NULL,
		draws BIGINT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	_, err := ps.db.Exec(schema)
	return err
}

func (ps *PostgresStore) Save(ctx context.Context, state *domain.SessionState) error {
	portalJSON, err := json.Marshal(state.Portal)
	if err != nil {
		return fmt.Errorf("failed to marshal portal: %w", err)
	}

	var playerJSON sql.NullString
	if state.Player != nil {
		raw, err := json.Marshal(state.Player)
		if err != nil {
			return fmt.Errorf("failed to marshal player: %w", err)
		}
		playerJSON = sql.NullString{String: string(raw), Valid: true}
	}

	query := `
	INSERT INTO sessions (id, portal, player, seed, draws, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id)
	DO UPDATE SET
		portal = $2, player = $3, seed = $4, draws = $5, updated_at = $6
	`
	_, err = ps.db.ExecContext(ctx, query,
		state.ID, string(portalJSON), playerJSON, state.Seed, state.Draws, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Load(ctx context.Context, id string) (*domain.SessionState, error) {
	query := `SELECT id, portal, player, seed, draws, updated_at FROM sessions WHERE id = $1`

	var (
		state      domain.SessionState
		portalJSON string
		playerJSON sql.NullString
	)
	err := ps.db.QueryRowContext(ctx, query, id).Scan(
		&state.ID, &portalJSON, &playerJSON, &state.Seed, &state.Draws, &state.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if err := json.Unmarshal([]byte(portalJSON), &state.Portal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal portal: %w", err)
	}
	if playerJSON.Valid {
		state.Player = &domain.Object{}
		if err := json.Unmarshal([]byte(playerJSON.String), state.Player); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player: %w", err)
		}
	}
	return &state, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
