package dungeon

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// parseLuaDefinitions исполняет скрипт в песочнице и собирает вызовы
//
//	object "goblin" { type = "character", movementType = "roam", health = 2 }
func parseLuaDefinitions(src string) (map[string]ObjectDefinition, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Только безопасные библиотеки
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}

	type rawObject struct {
		name  string
		table *lua.LTable
	}
	var collected []rawObject

	// object "name" { ... } - каррированный конструктор
	L.SetGlobal("object", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			collected = append(collected, rawObject{name: name, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("executing definitions script: %w", err)
	}

	defs := make(map[string]ObjectDefinition, len(collected))
	for _, obj := range collected {
		if _, dup := defs[obj.name]; dup {
			return nil, fmt.Errorf("object %q defined twice", obj.name)
		}
		def := ObjectDefinition{
			Type:         luaString(obj.table, "type"),
			MovementType: luaString(obj.table, "movementType"),
			Health:       luaInt(obj.table, "health"),
			Ammo:         luaInt(obj.table, "ammo"),
			CanShoot:     luaBool(obj.table, "canShoot"),
			CanRotate:    luaBool(obj.table, "canRotate"),
			CanPush:      luaBool(obj.table, "canPush"),
			PlayerAvatar: luaBool(obj.table, "playerAvatar"),
		}
		if gfx, ok := obj.table.RawGetString("graphics").(*lua.LTable); ok {
			def.Graphics = Graphics{
				Mesh:    luaString(gfx, "mesh"),
				Texture: luaString(gfx, "texture"),
			}
		}
		defs[obj.name] = def
	}
	return defs, nil
}

func luaString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func luaBool(tbl *lua.LTable, key string) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return false
}

func luaInt(tbl *lua.LTable, key string) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return 0
}
