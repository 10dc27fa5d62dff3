package tui

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"tower-server/internal/domain"
	"tower-server/internal/engine"
	"tower-server/internal/scene"
	"tower-server/pkg/api"
	"tower-server/pkg/dungeon"
	"tower-server/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMap_Command(t *testing.T) {
	keys := defaultKeyMap()

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		aiming bool
		action string
		dir    string
		ok     bool
	}{
		{"arrow moves", tea.KeyMsg{Type: tea.KeyUp}, false, "MOVE", "UP", true},
		{"wasd moves", runes("a"), false, "MOVE", "LEFT", true},
		{"shift arrow shoots", tea.KeyMsg{Type: tea.KeyShiftRight}, false, "SHOOT", "RIGHT", true},
		{"capital wasd shoots", runes("S"), false, "SHOOT", "DOWN", true},
		{"aimed arrow shoots", tea.KeyMsg{Type: tea.KeyDown}, true, "SHOOT", "DOWN", true},
		{"checkpoint", runes("c"), false, "CHECKPOINT", "", true},
		{"unbound key", runes("x"), false, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := keys.command(tt.msg, tt.aiming)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.action, cmd.Action)

			if tt.dir == "" {
				assert.Empty(t, cmd.Payload)
				return
			}
			var p api.DirectionPayload
			require.NoError(t, json.Unmarshal(cmd.Payload, &p))
			assert.Equal(t, tt.dir, p.Dir)
		})
	}
}

func TestGlyphs(t *testing.T) {
	assert.Equal(t, "@", objectGlyph(api.ObjectView{Name: "player", Kind: "character", IsPlayer: true}))
	assert.Equal(t, "g", objectGlyph(api.ObjectView{Name: "goblin", Kind: "character"}))
	assert.Equal(t, "O", objectGlyph(api.ObjectView{Name: "boulder", Kind: "boulder"}))

	assert.Equal(t, "+", featureGlyph(api.FeatureView{Kind: "door", State: "active"}))
	assert.Equal(t, "'", featureGlyph(api.FeatureView{Kind: "door", State: "inactive"}))
	assert.Equal(t, "^", featureGlyph(api.FeatureView{Kind: "spikes", State: "active"}))
}

func TestRenderGrid(t *testing.T) {
	snap := &api.ServerResponse{
		Grid: &api.GridMeta{Width: 3, Height: 2},
		Map: []api.TileView{
			{X: 0, Y: 0, Symbol: "#"}, {X: 1, Y: 0, Symbol: ".", Walkable: true}, {X: 2, Y: 0, Symbol: ">", Walkable: true, Stairs: true},
			{X: 0, Y: 1, Symbol: "#"}, {X: 1, Y: 1, Symbol: ".", Walkable: true}, {X: 2, Y: 1, Symbol: ".", Walkable: true},
		},
		Objects:  []api.ObjectView{{Name: "player", IsPlayer: true, Pos: api.PointView{X: 1, Y: 1}}},
		Features: []api.FeatureView{{Kind: "door", State: "active", Pos: api.PointView{X: 2, Y: 1}}},
	}

	for _, dim := range []bool{false, true} {
		lines := strings.Split(renderGrid(snap, dim), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], ">")
		assert.Contains(t, lines[1], "@")
		assert.Contains(t, lines[1], "+")
	}

	assert.Empty(t, renderGrid(nil, false))
}

func TestRenderLogs(t *testing.T) {
	var logs []api.LogEntry
	for i := 0; i < visibleLogs+3; i++ {
		logs = append(logs, api.LogEntry{Text: string(rune('a' + i)), Type: api.LogInfo})
	}
	out := renderLogs(logs)
	assert.Len(t, strings.Split(out, "\n"), visibleLogs)
	assert.NotContains(t, out, "a")
}

func newModel(t *testing.T) (Model, *engine.Session) {
	t.Helper()
	cfg := engine.NewConfig()
	cfg.Seed = 21
	cfg.StartRegion = "gen:tower"

	world := scene.New(scene.DefaultOptions())
	c := engine.NewController(cfg, world, dungeon.NewRegionLoader("", cfg.Seed), nil,
		dungeon.DefaultDefinitions(), &domain.SessionState{ID: "tui", Seed: cfg.Seed})
	world.SetListener(c.HandleMessage)

	session := engine.NewSession(cfg, world, c, nil)
	require.NoError(t, session.Start())
	return New(context.Background(), cfg, session, world), session
}

func TestModel_Update(t *testing.T) {
	m, session := newModel(t)

	next, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, session.Frame())

	// Ход записывается в ленту реплея
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Len(t, session.Replay().Actions, 1)

	// f включает прицел, следующее направление - выстрел
	next, _ = next.Update(runes("f"))
	assert.True(t, next.(Model).aiming)

	view := next.View()
	assert.Contains(t, view, "@")
	assert.Contains(t, view, "ПРИЦЕЛ")

	next, cmd = next.Update(runes("q"))
	assert.True(t, next.(Model).quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}
