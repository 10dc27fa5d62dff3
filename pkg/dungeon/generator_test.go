package dungeon

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"tower-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stairsOf(l *domain.Level) []domain.Position {
	var out []domain.Position
	for y := 0; y < l.Height(); y++ {
		for x := 0; x < l.Width(); x++ {
			if t, _ := l.Tile(x, y); t.IsStairs {
				out = append(out, domain.Position{X: x, Y: y})
			}
		}
	}
	return out
}

func TestGenerateLevel_SingleReachableStairs(t *testing.T) {
	opts := DefaultRegionOptions()
	opts.WallChance = 0.9

	for seed := int64(1); seed <= 20; seed++ {
		level, err := GenerateLevel(rand.New(rand.NewSource(seed)), opts, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultLevelWidth, level.Width())
		assert.Equal(t, domain.DefaultLevelHeight, level.Height())

		stairs := stairsOf(level)
		require.Len(t, stairs, 1, "seed %d", seed)
		s := stairs[0]

		assert.True(t, s.X > 0 && s.X < level.Width()-1, "stairs on interior column")
		assert.True(t, s.Y > 0 && s.Y < level.Height()-1, "stairs on interior row")

		left, _ := level.Tile(s.X-1, s.Y)
		right, _ := level.Tile(s.X+1, s.Y)
		assert.True(t, left.Walkable && right.Walkable, "seed %d: stairs neighbours must be open", seed)

		tile, _ := level.TileAt(s)
		assert.Equal(t, 0, tile.Portal)
	}
}

func TestGenerateLevel_Deterministic(t *testing.T) {
	opts := DefaultRegionOptions()
	a, err := GenerateLevel(rand.New(rand.NewSource(42)), opts, 0)
	require.NoError(t, err)
	b, err := GenerateLevel(rand.New(rand.NewSource(42)), opts, 0)
	require.NoError(t, err)

	assert.Equal(t, a.Tiles(), b.Tiles())
}

func TestGenerateRegion(t *testing.T) {
	opts := DefaultRegionOptions()
	region, err := GenerateRegion("gen:test", rand.New(rand.NewSource(7)), opts)
	require.NoError(t, err)

	count := 0
	region.Each(func(_ domain.Position, l *domain.Level) {
		count++
		// Дверные проёмы и центр всегда проходимы
		mid, _ := l.Tile(l.Width()/2, 0)
		assert.True(t, mid.Walkable)
		center, _ := l.Tile(l.Width()/2, l.Height()/2)
		assert.True(t, center.Walkable || center.IsStairs)
	})
	assert.Equal(t, opts.Width*opts.Height, count)

	portal, ok := region.Portal(0)
	require.True(t, ok)
	assert.Equal(t, "gen:test", portal.Region)
}

func TestRegionLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tower.json"), []byte(sampleRegion), 0o644))

	loader := NewRegionLoader(dir, 99)

	region, err := loader.LoadRegion("tower")
	require.NoError(t, err)
	assert.Equal(t, "tower", region.Name)

	again, err := loader.LoadRegion("tower")
	require.NoError(t, err)
	assert.NotSame(t, region, again, "every load yields a fresh region")

	_, err = loader.LoadRegion("attic")
	assert.ErrorIs(t, err, ErrRegionNotFound)

	g1, err := loader.LoadRegion("gen:deep")
	require.NoError(t, err)
	g2, err := loader.LoadRegion("gen:deep")
	require.NoError(t, err)
	l1, _ := g1.Level(1, 1)
	l2, _ := g2.Level(1, 1)
	assert.Equal(t, l1.Tiles(), l2.Tiles(), "procedural regions are stable per name")
}
