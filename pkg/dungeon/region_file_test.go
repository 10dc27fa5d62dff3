package dungeon

import (
	"testing"

	"tower-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegion = `{
  "width": 2,
  "height": 1,
  "tiles": {
    ".": {"walkable": true, "graphics": "floor"},
    "#": {"walkable": false, "graphics": "wall"},
    ">": {"walkable": true, "stairs": true, "portal": 0},
    "g": {"walkable": true, "object": "goblin", "spawnRate": 0.5},
    "b": {"walkable": true, "feature": "button", "target": [3, 1]},
    "d": {"walkable": true, "feature": "door"}
  },
  "levels": [
    {"data": ["#####", "#.bd#", "#g.>#"]},
    {
      "tiles": {"x": {"walkable": true, "object": "boulder"}, ".": {"walkable": true, "graphics": "moss"}},
      "data": ["#####", "#.x.#", "#...#"]
    }
  ],
  "portals": [{"region": "cellar", "level": [0, 0], "tile": [2, 1]}]
}`

func mustTile(t *testing.T, l *domain.Level, x, y int) domain.Tile {
	t.Helper()
	tile, ok := l.Tile(x, y)
	require.True(t, ok, "tile (%d,%d) out of bounds", x, y)
	return tile
}

func TestParseRegion_JSON(t *testing.T) {
	region, err := ParseRegion("tower", []byte(sampleRegion), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "tower", region.Name)
	assert.Equal(t, 2, region.Width)
	assert.Equal(t, 1, region.Height)

	first, ok := region.Level(0, 0)
	require.True(t, ok)
	assert.Equal(t, 5, first.Width())
	assert.Equal(t, 3, first.Height())

	wall := mustTile(t, first, 0, 0)
	assert.False(t, wall.Walkable)
	assert.Equal(t, domain.NoLink, wall.Portal)

	button := mustTile(t, first, 2, 1)
	assert.Equal(t, domain.FeatureButton, button.Feature)
	assert.Equal(t, first.Index(3, 1), button.FeatureTarget)

	door := mustTile(t, first, 3, 1)
	assert.Equal(t, domain.FeatureDoor, door.Feature)
	assert.Equal(t, domain.NoLink, door.FeatureTarget)

	spawn := mustTile(t, first, 1, 2)
	assert.Equal(t, "goblin", spawn.SpawnObject)
	assert.InDelta(t, 0.5, spawn.SpawnProbability, 1e-9)

	stairs := mustTile(t, first, 3, 2)
	assert.True(t, stairs.IsStairs)
	assert.Equal(t, 0, stairs.Portal)

	second, ok := region.Level(1, 0)
	require.True(t, ok)
	boulder := mustTile(t, second, 2, 1)
	assert.Equal(t, "boulder", boulder.SpawnObject)
	assert.InDelta(t, 1.0, boulder.SpawnProbability, 1e-9, "spawnRate defaults to 1 when an object is set")
	assert.Equal(t, "moss", mustTile(t, second, 1, 1).Graphics, "local table overrides the region table")

	require.Len(t, region.Portals, 1)
	assert.Equal(t, domain.Portal{Region: "cellar", Level: domain.Position{X: 0, Y: 0}, Tile: domain.Position{X: 2, Y: 1}}, region.Portals[0])
}

func TestParseRegion_YAML(t *testing.T) {
	src := `
width: 1
height: 2
tiles:
  ".": {walkable: true}
  "#": {walkable: false}
  "s": {walkable: true, feature: spikes}
levels:
  - data:
      - "###"
      - "#s#"
  - null
`
	region, err := ParseRegion("pit", []byte(src), FormatYAML)
	require.NoError(t, err)

	level, ok := region.Level(0, 0)
	require.True(t, ok)
	assert.Equal(t, domain.FeatureSpikes, mustTile(t, level, 1, 1).Feature)

	_, ok = region.Level(0, 1)
	assert.False(t, ok, "null level entry means no room")
}

func TestParseRegion_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{
			name:    "unknown symbol",
			src:     `{"width":1,"height":1,"tiles":{".":{"walkable":true}},"levels":[{"data":["..?"]}]}`,
			wantErr: ErrUnknownSymbol,
		},
		{
			name:    "ragged rows",
			src:     `{"width":1,"height":1,"tiles":{".":{"walkable":true}},"levels":[{"data":["...", ".."]}]}`,
			wantErr: ErrRaggedLevel,
		},
		{
			name: "mismatched level sizes",
			src:  `{"width":2,"height":1,"tiles":{".":{"walkable":true}},"levels":[{"data":["..."]},{"data":[".."]}]}`,
		},
		{
			name: "unknown feature",
			src:  `{"width":1,"height":1,"tiles":{"x":{"walkable":true,"feature":"lava"}},"levels":[{"data":["x"]}]}`,
		},
		{
			name: "too many levels",
			src:  `{"width":1,"height":1,"tiles":{".":{"walkable":true}},"levels":[{"data":["."]},{"data":["."]}]}`,
		},
		{
			name: "no levels",
			src:  `{"width":1,"height":1,"tiles":{},"levels":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegion("bad", []byte(tt.src), FormatJSON)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func assertSameTiles(t *testing.T, want, got *domain.Region) {
	t.Helper()
	require.Equal(t, want.Width, got.Width)
	require.Equal(t, want.Height, got.Height)
	assert.Equal(t, want.Portals, got.Portals)

	want.Each(func(pos domain.Position, wl *domain.Level) {
		gl, ok := got.LevelAt(pos)
		require.True(t, ok, "level %v lost", pos)
		require.Equal(t, wl.Width(), gl.Width())
		require.Equal(t, wl.Height(), gl.Height())
		for y := 0; y < wl.Height(); y++ {
			for x := 0; x < wl.Width(); x++ {
				assert.Equal(t, mustTile(t, wl, x, y), mustTile(t, gl, x, y), "level %v cell (%d,%d)", pos, x, y)
			}
		}
	})
}

func TestEncodeRegion_RoundTrip(t *testing.T) {
	original, err := ParseRegion("tower", []byte(sampleRegion), FormatJSON)
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		file, err := EncodeRegion(original)
		require.NoError(t, err)

		data, err := file.Marshal(format)
		require.NoError(t, err)

		parsed, err := ParseRegion("tower", data, format)
		require.NoError(t, err, "format %d:\n%s", format, data)

		assertSameTiles(t, original, parsed)
	}
}
