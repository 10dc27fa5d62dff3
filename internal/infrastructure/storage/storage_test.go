package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tower-server/internal/domain"
	"tower-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func sampleState() *domain.SessionState {
	return &domain.SessionState{
		ID: "01HZX3",
		Portal: domain.Portal{
			Region: "gen:tower",
			Level:  domain.Position{X: 1, Y: 2},
			Tile:   domain.Position{X: 6, Y: 5},
		},
		Player: &domain.Object{
			Name: "player", Kind: domain.ObjectCharacter, Health: 2, MaxHealth: 3, Ammo: 4,
			Facing: domain.DirLeft, Flags: domain.FlagPlayerAvatar | domain.FlagCanShoot,
			Pos: domain.Vec2{X: 6, Y: 5},
		},
		Seed:      42,
		Draws:     17,
		UpdatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSessionStores(t *testing.T) {
	stores := []struct {
		name string
		open func(t *testing.T) SessionStore
	}{
		{"memory", func(t *testing.T) SessionStore { return NewMemoryStore() }},
		{"json", func(t *testing.T) SessionStore {
			s, err := NewJSONStore(filepath.Join(t.TempDir(), "saves"))
			require.NoError(t, err)
			return s
		}},
	}

	if url := os.Getenv("TOWER_TEST_DATABASE_URL"); url != "" {
		stores = append(stores, struct {
			name string
			open func(t *testing.T) SessionStore
		}{"postgres", func(t *testing.T) SessionStore {
			s, err := NewPostgresStore(url)
			require.NoError(t, err)
			return s
		}})
	}

	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := tt.open(t)
			defer store.Close()

			_, err := store.Load(ctx, "missing")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			st := sampleState()
			require.NoError(t, store.Save(ctx, st))

			got, err := store.Load(ctx, st.ID)
			require.NoError(t, err)
			assert.Equal(t, st.Portal, got.Portal)
			assert.Equal(t, st.Seed, got.Seed)
			assert.Equal(t, st.Draws, got.Draws)
			assert.True(t, st.UpdatedAt.Equal(got.UpdatedAt))
			require.NotNil(t, got.Player)
			assert.Equal(t, *st.Player, *got.Player)

			// Повторное сохранение перезаписывает запись
			st.Draws = 99
			st.Player = nil
			require.NoError(t, store.Save(ctx, st))
			got, err = store.Load(ctx, st.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(99), got.Draws)
			assert.Nil(t, got.Player)
		})
	}
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	st := sampleState()
	require.NoError(t, store.Save(ctx, st))

	st.Player.Health = 0
	got, err := store.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Player.Health)
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open("json", t.TempDir(), "")
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	_, err = Open("redis", "", "")
	assert.Error(t, err)
}

func sampleReplay() *domain.ReplaySession {
	return &domain.ReplaySession{
		Seed:      7,
		Draws:     3,
		Timestamp: 1700000000,
		Start: domain.Portal{
			Region: "gen:tower",
			Level:  domain.Position{X: 1, Y: 1},
			Tile:   domain.Position{X: 6, Y: 5},
		},
		Player: &domain.Object{
			Name:      "hero",
			Kind:      domain.ObjectCharacter,
			Pos:       domain.Vec2{X: 6, Y: 5},
			Facing:    domain.DirLeft,
			Flags:     domain.FlagPlayerAvatar | domain.FlagCanShoot,
			Health:    1,
			MaxHealth: 3,
		},
		Actions: []domain.ReplayAction{
			{Frame: 0, Action: domain.ActionMove, Dir: domain.DirRight},
			{Frame: 12, Action: domain.ActionShoot, Dir: domain.DirUp},
			{Frame: 40, Action: domain.ActionMove, Dir: domain.DirDown},
		},
	}
}

func TestReplay_Binary(t *testing.T) {
	templatePlayer := sampleReplay()
	templatePlayer.Player = nil

	tests := []struct {
		name string
		rec  *domain.ReplaySession
	}{
		{"Resumed player", sampleReplay()},
		{"Template player", templatePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeBinary(&buf, tt.rec))
			assert.Equal(t, MagicHeader, string(buf.Bytes()[:4]))

			got, err := readBinary(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.rec, got)
		})
	}
}

func TestReplay_ReadErrors(t *testing.T) {
	valid := func() []byte {
		var buf bytes.Buffer
		require.NoError(t, writeBinary(&buf, sampleReplay()))
		return buf.Bytes()
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		target error
	}{
		{"bad magic", func(b []byte) []byte { copy(b, "CDRP"); return b }, ErrInvalidMagic},
		{"bad version", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[4:8], 9)
			return b
		}, ErrUnsupportedVersion},
		{"oversized player", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[54:58], maxPlayerLen+1)
			return b
		}, nil},
		{"truncated", func(b []byte) []byte { return b[:len(b)-3] }, nil},
		{"empty", func([]byte) []byte { return nil }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readBinary(bytes.NewReader(tt.mutate(valid())))
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestReplayService_SaveLoad(t *testing.T) {
	svc := NewReplayService(filepath.Join(t.TempDir(), "replays"))

	path, err := svc.Save(sampleReplay())
	require.NoError(t, err)
	assert.Equal(t, "replay_7_1700000000.twrp", filepath.Base(path))

	got, err := svc.Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleReplay(), got)
}
