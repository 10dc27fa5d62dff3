package dungeon

import (
	"os"
	"path/filepath"
	"testing"

	"tower-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const luaDefinitions = `
object "hero" {
  type = "character",
  health = 3,
  ammo = 4,
  canShoot = true,
  canRotate = true,
  canPush = true,
  playerAvatar = true,
  graphics = { mesh = "hero.obj", texture = "hero.png" },
}

object "rock" { type = "boulder" }

local patrol = { type = "character", movementType = "line", health = 2 }
object "guard" (patrol)
`

func TestParseDefinitions_Formats(t *testing.T) {
	jsonSrc := `{"goblin": {"type": "character", "movementType": "roam", "health": 2, "graphics": {"mesh": "g.obj", "texture": "g.png"}}}`
	yamlSrc := "goblin:\n  type: character\n  movementType: roam\n  health: 2\n  graphics:\n    mesh: g.obj\n    texture: g.png\n"

	for name, tc := range map[string]struct {
		src    string
		format Format
	}{
		"json": {jsonSrc, FormatJSON},
		"yaml": {yamlSrc, FormatYAML},
	} {
		t.Run(name, func(t *testing.T) {
			defs, err := ParseDefinitions([]byte(tc.src), tc.format)
			require.NoError(t, err)

			def, ok := defs.Lookup("goblin")
			require.True(t, ok)
			assert.Equal(t, "goblin", def.Name)
			assert.Equal(t, "roam", def.MovementType)
			assert.Equal(t, 2, def.Health)
			assert.Equal(t, Graphics{Mesh: "g.obj", Texture: "g.png"}, def.Graphics)
		})
	}
}

func TestParseDefinitions_Lua(t *testing.T) {
	defs, err := ParseDefinitions([]byte(luaDefinitions), FormatLua)
	require.NoError(t, err)
	require.Len(t, defs, 3)

	hero, ok := defs.Player()
	require.True(t, ok)
	assert.Equal(t, "hero", hero.Name)
	assert.Equal(t, 4, hero.Ammo)
	assert.Equal(t, "hero.png", hero.Graphics.Texture)
	assert.Equal(t, "still", hero.MovementType, "movementType defaults to still")

	rock := defs["rock"]
	assert.Equal(t, 1, rock.Health, "health defaults to 1")

	assert.Equal(t, "line", defs["guard"].MovementType)
}

func TestParseDefinitions_LuaSandbox(t *testing.T) {
	_, err := ParseDefinitions([]byte(`dofile("/etc/passwd")`), FormatLua)
	assert.Error(t, err)

	_, err = ParseDefinitions([]byte(`object "a" { type = "boulder" } object "a" { type = "boulder" }`), FormatLua)
	assert.Error(t, err, "duplicate names are rejected")
}

func TestParseDefinitions_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing type":     `{"x": {"health": 1}}`,
		"unknown type":     `{"x": {"type": "dragon"}}`,
		"unknown movement": `{"x": {"type": "character", "movementType": "fly"}}`,
		"negative ammo":    `{"x": {"type": "character", "ammo": -1}}`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDefinitions([]byte(src), FormatJSON)
			assert.Error(t, err)
		})
	}
}

func TestObjectDefinition_Instantiate(t *testing.T) {
	obj := Player.Instantiate(domain.Position{X: 4, Y: 2}, domain.DirLeft)

	assert.Equal(t, domain.ObjectCharacter, obj.Kind)
	assert.Equal(t, domain.Position{X: 4, Y: 2}, obj.Cell())
	assert.Equal(t, domain.DirLeft, obj.Facing)
	assert.True(t, obj.IsPlayer())
	assert.True(t, obj.Flags.Has(domain.FlagCanShoot))
	assert.True(t, obj.Flags.Has(domain.FlagCanPush))
	assert.Equal(t, Player.Health, obj.MaxHealth)
	assert.Equal(t, domain.NilEntity, obj.Entity)

	boulder := Boulder.Instantiate(domain.Position{}, domain.DirNone)
	assert.True(t, boulder.IsBoulder())
	assert.False(t, boulder.Flags.Has(domain.FlagCanRotate))
}

func TestLoadDefinitions_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "objects.lua")
	require.NoError(t, os.WriteFile(path, []byte(luaDefinitions), 0o644))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	assert.Contains(t, defs, "guard")

	_, err = LoadDefinitions(filepath.Join(dir, "objects.toml"))
	assert.Error(t, err)

	_, err = LoadDefinitions(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDefaultDefinitions(t *testing.T) {
	defs := DefaultDefinitions()
	for _, def := range defs {
		copyDef := def
		require.NoError(t, copyDef.normalize(def.Name), def.Name)
	}
	player, ok := defs.Player()
	require.True(t, ok)
	assert.Equal(t, "player", player.Name)
}
