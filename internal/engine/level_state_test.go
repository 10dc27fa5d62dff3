package engine

import (
	"testing"

	"tower-server/internal/domain"
	"tower-server/pkg/dungeon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelState_AddObjectOccupied(t *testing.T) {
	rig := newRig(t, buildLevel(t, "....", "...."))
	first := rig.place(t, "goblin", 1, 1)

	intruder := &domain.Object{Name: "boulder", Kind: domain.ObjectBoulder, Pos: domain.Vec2{X: 1, Y: 1}}
	assert.False(t, rig.state.AddObject(intruder))
	assert.Same(t, first, rig.state.ObjectAt(1, 1), "occupant must stay in place")

	outside := &domain.Object{Name: "ghost", Pos: domain.Vec2{X: 9, Y: 9}}
	assert.False(t, rig.state.AddObject(outside))
}

func TestLevelState_Queries(t *testing.T) {
	rig := newRig(t, buildLevel(t, "....", "...."))
	goblin := rig.place(t, "goblin", 2, 1)
	player := rig.place(t, "player", 3, 1)
	rig.place(t, "boulder", 0, 0)

	assert.Same(t, goblin, rig.state.ObjectAtPosition(domain.Vec2{X: 2.4, Y: 0.6}))
	assert.Nil(t, rig.state.ObjectAt(-1, 0))
	assert.Nil(t, rig.state.ObjectAt(4, 0))
	assert.Same(t, player, rig.state.FindPlayer())

	chars := rig.state.FindAllCharacters()
	require.Len(t, chars, 2)
	assert.Same(t, goblin, chars[0], "scan order is row-major")
	assert.Same(t, player, chars[1])
	assert.Len(t, rig.state.Objects(), 3)
}

func TestLevelState_SpawnUnknownTemplate(t *testing.T) {
	rig := newRig(t, buildLevel(t, "...."))
	assert.Nil(t, rig.state.Spawn("dragon", domain.Position{X: 1, Y: 0}, domain.DirUp, nil))
	assert.Nil(t, rig.state.ObjectAt(1, 0))
	assert.Empty(t, rig.host.created(domain.EntityKindObject))
}

func TestLevelState_SpawnRandomFacing(t *testing.T) {
	rig := newRig(t, buildLevel(t, "...."))
	obj := rig.state.Spawn("goblin", domain.Position{X: 1, Y: 0}, domain.DirNone, NewRandom(3))
	require.NotNil(t, obj)
	assert.NotEqual(t, domain.DirNone, obj.Facing)
	assert.NotEqual(t, domain.NilEntity, obj.Entity)
}

func spawnLevel(t *testing.T) *domain.Level {
	tiles := make([]domain.Tile, 0, 6*4)
	for i := 0; i < 6*4; i++ {
		tile := domain.Floor()
		tile.SpawnObject = "goblin"
		tile.SpawnProbability = 0.3
		tiles = append(tiles, tile)
	}
	level, err := domain.NewLevel(6, 4, tiles)
	require.NoError(t, err)
	return level
}

func TestLevelState_PopulateDeterministic(t *testing.T) {
	cells := func() []domain.Position {
		host := newFakeHost()
		state := NewLevelState(host, dungeon.DefaultDefinitions())
		state.Activate(spawnLevel(t), 0)
		state.Populate(NewRandom(99))
		var out []domain.Position
		for _, obj := range state.Objects() {
			out = append(out, obj.Cell())
		}
		return out
	}

	first := cells()
	assert.NotEmpty(t, first)
	assert.Equal(t, first, cells())
}

func TestLevelState_PopulateSkipsOccupied(t *testing.T) {
	tiles := []domain.Tile{domain.Floor(), domain.Floor()}
	tiles[0].SpawnObject = "goblin"
	tiles[0].SpawnProbability = 1
	level, err := domain.NewLevel(2, 1, tiles)
	require.NoError(t, err)

	host := newFakeHost()
	state := NewLevelState(host, dungeon.DefaultDefinitions())
	state.Activate(level, 0)
	player := state.Spawn("player", domain.Position{X: 0, Y: 0}, domain.DirDown, nil)
	state.Populate(NewRandom(1))

	assert.Same(t, player, state.ObjectAt(0, 0))
	assert.Len(t, state.Objects(), 1)
}

func TestLevelState_ClearDestroysEntities(t *testing.T) {
	rig := newRig(t, buildLevel(t, "b.D."))
	rig.place(t, "goblin", 1, 0)
	rig.place(t, "boulder", 3, 0)

	require.Len(t, rig.state.Features(), 2)
	rig.state.Clear()

	assert.Empty(t, rig.state.Objects())
	assert.Empty(t, rig.state.Features())
	assert.Len(t, rig.host.destroyed, 4)
}

func TestLevelState_DetachKeepsEntity(t *testing.T) {
	rig := newRig(t, buildLevel(t, "...."))
	player := rig.place(t, "player", 1, 0)

	assert.True(t, rig.state.Detach(player))
	assert.Nil(t, rig.state.ObjectAt(1, 0))
	assert.Empty(t, rig.host.destroyed)
	assert.False(t, rig.state.Detach(player))
}

func TestLevelState_FeatureInitialState(t *testing.T) {
	rig := newRig(t, buildLevel(t, "bD^_"))

	tests := []struct {
		x      int
		kind   domain.FeatureKind
		active bool
		target int
	}{
		{0, domain.FeatureButton, false, 1},
		{1, domain.FeatureDoor, true, domain.NoLink},
		{2, domain.FeatureSpikes, true, domain.NoLink},
		{3, domain.FeatureBreakableFloor, true, domain.NoLink},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			f := rig.state.FeatureAt(tt.x, 0)
			require.NotNil(t, f)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.active, f.Active)
			assert.Equal(t, tt.target, f.Target)
			assert.NotEqual(t, domain.NilEntity, f.Entity)
		})
	}
}
