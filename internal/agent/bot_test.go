package agent

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"testing"
	"time"

	"tower-server/internal/network"
	"tower-server/pkg/api"
	"tower-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type submitter struct {
	cmds chan api.ClientCommand
}

func (s *submitter) Submit(cmd api.ClientCommand) bool {
	select {
	case s.cmds <- cmd:
		return true
	default:
		return false
	}
}

// room - снимок 5x5 без стен, игрок в центре.
func room(extra ...func(*api.ServerResponse)) api.ServerResponse {
	snap := api.ServerResponse{
		Type:  api.TypeSnapshot,
		State: "IN_LEVEL",
		Grid:  &api.GridMeta{Width: 5, Height: 5},
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			snap.Map = append(snap.Map, api.TileView{X: x, Y: y, Symbol: ".", Walkable: true})
		}
	}
	snap.Objects = append(snap.Objects, api.ObjectView{
		ID: "p", Kind: "character", Pos: api.PointView{X: 2, Y: 2}, HP: 3, MaxHP: 3, IsPlayer: true,
	})
	for _, fn := range extra {
		fn(&snap)
	}
	return snap
}

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func withAmmo(n int) func(*api.ServerResponse) {
	return func(s *api.ServerResponse) { s.Objects[0].Ammo = n }
}

func withEnemy(x, y int) func(*api.ServerResponse) {
	return func(s *api.ServerResponse) {
		s.Objects = append(s.Objects, api.ObjectView{ID: "e", Kind: "character", Pos: api.PointView{X: x, Y: y}, HP: 1})
	}
}

func withStairs(x, y int) func(*api.ServerResponse) {
	return func(s *api.ServerResponse) {
		for i := range s.Map {
			if s.Map[i].X == x && s.Map[i].Y == y {
				s.Map[i].Stairs = true
			}
		}
	}
}

func withFeature(kind, state string, x, y int) func(*api.ServerResponse) {
	return func(s *api.ServerResponse) {
		s.Features = append(s.Features, api.FeatureView{Kind: kind, State: state, Pos: api.PointView{X: x, Y: y}})
	}
}

func dirOf(t *testing.T, cmd api.ClientCommand) string {
	var p api.DirectionPayload
	require.NoError(t, json.Unmarshal(cmd.Payload, &p))
	return p.Dir
}

func TestBot_Decide(t *testing.T) {
	tests := []struct {
		name   string
		snap   api.ServerResponse
		action string
		dir    string
	}{
		{"Shoot aligned enemy", room(withAmmo(1), withEnemy(2, 0)), "SHOOT", "UP"},
		{"No ammo walks to stairs", room(withEnemy(2, 0), withStairs(4, 2)), "MOVE", "RIGHT"},
		{"Larger axis first", room(withStairs(3, 0)), "MOVE", "UP"},
		{"Closed door forces other axis", room(withStairs(3, 0), withFeature("door", "active", 2, 1)), "MOVE", "RIGHT"},
		{"Enemy behind boulder is not a target", room(withAmmo(1), withStairs(4, 2), func(s *api.ServerResponse) {
			s.Objects = append(s.Objects,
				api.ObjectView{ID: "b", Kind: "boulder", Pos: api.PointView{X: 2, Y: 1}},
				api.ObjectView{ID: "e", Kind: "character", Pos: api.PointView{X: 2, Y: 0}, HP: 1})
		}), "MOVE", "RIGHT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Bot{rng: newTestRand()}
			cmd, ok := b.Decide(tt.snap)
			require.True(t, ok)
			assert.Equal(t, tt.action, cmd.Action)
			assert.Equal(t, tt.dir, dirOf(t, cmd))
		})
	}
}

func TestBot_DecideSkips(t *testing.T) {
	tests := []struct {
		name string
		snap api.ServerResponse
	}{
		{"Waiting", room(func(s *api.ServerResponse) { s.Waiting = true })},
		{"Transition", room(func(s *api.ServerResponse) { s.State = "IN_TRANSITION" })},
		{"No player", room(func(s *api.ServerResponse) { s.Objects = nil })},
		{"Walled in", room(
			withFeature("door", "active", 2, 1),
			withFeature("door", "active", 2, 3),
			withFeature("breakable_floor", "inactive", 1, 2),
			withFeature("spikes", "active", 3, 2),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Bot{rng: newTestRand()}
			_, ok := b.Decide(tt.snap)
			assert.False(t, ok)
		})
	}
}

func TestBot_RandomStepIsPassable(t *testing.T) {
	snap := room(withFeature("door", "active", 2, 1), withFeature("door", "active", 2, 3))
	b := &Bot{rng: newTestRand()}

	for i := 0; i < 20; i++ {
		cmd, ok := b.Decide(snap)
		require.True(t, ok)
		assert.Contains(t, []string{"LEFT", "RIGHT"}, dirOf(t, cmd))
	}
}

func TestBot_Run(t *testing.T) {
	hub := network.NewBroadcaster()
	sub := &submitter{cmds: make(chan api.ClientCommand, 4)}
	bot := NewBot("bot", sub, hub, 1, time.Hour)
	assert.Equal(t, 1, hub.SubscriberCount())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bot.Run(ctx)
		close(done)
	}()

	hub.Broadcast(room(withStairs(2, 4)))

	select {
	case cmd := <-sub.cmds:
		assert.Equal(t, "MOVE", cmd.Action)
		assert.Equal(t, "DOWN", dirOf(t, cmd))
	case <-time.After(time.Second):
		t.Fatal("bot did not act")
	}

	cancel()
	<-done
	assert.Equal(t, 0, hub.SubscriberCount())
}
