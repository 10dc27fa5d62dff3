package dungeon

// Встроенные шаблоны. Используются, если файл определений не указан,
// и как запасной набор для процедурных регионов.

// --- ИГРОК ---

var Player = ObjectDefinition{
	Name:         "player",
	Type:         "character",
	MovementType: "still",
	Health:       3,
	Ammo:         5,
	CanShoot:     true,
	CanRotate:    true,
	CanPush:      true,
	PlayerAvatar: true,
	Graphics:     Graphics{Mesh: "player.obj", Texture: "player.png"},
}

// --- ВРАГИ ---

var Goblin = ObjectDefinition{
	Name:         "goblin",
	Type:         "character",
	MovementType: "roam",
	Health:       2,
	CanRotate:    true,
	Graphics:     Graphics{Mesh: "goblin.obj", Texture: "goblin.png"},
}

var Archer = ObjectDefinition{
	Name:         "archer",
	Type:         "character",
	MovementType: "roam",
	Health:       1,
	Ammo:         3,
	CanShoot:     true,
	CanRotate:    true,
	Graphics:     Graphics{Mesh: "archer.obj", Texture: "archer.png"},
}

// Sentry ходит по прямой туда-обратно.
var Sentry = ObjectDefinition{
	Name:         "sentry",
	Type:         "character",
	MovementType: "line",
	Health:       2,
	CanRotate:    true,
	Graphics:     Graphics{Mesh: "sentry.obj", Texture: "sentry.png"},
}

// Turret стоит на месте и стреляет.
var Turret = ObjectDefinition{
	Name:         "turret",
	Type:         "character",
	MovementType: "still",
	Health:       2,
	Ammo:         10,
	CanShoot:     true,
	CanRotate:    true,
	Graphics:     Graphics{Mesh: "turret.obj", Texture: "turret.png"},
}

// --- ОКРУЖЕНИЕ ---

var Boulder = ObjectDefinition{
	Name:         "boulder",
	Type:         "boulder",
	MovementType: "still",
	Health:       1,
	Graphics:     Graphics{Mesh: "boulder.obj", Texture: "stone.png"},
}

var Terminal = ObjectDefinition{
	Name:         "terminal",
	Type:         "terminal",
	MovementType: "still",
	Health:       1,
	Graphics:     Graphics{Mesh: "terminal.obj", Texture: "terminal.png"},
}

var AmmoCrate = ObjectDefinition{
	Name:         "ammo",
	Type:         "pickup",
	MovementType: "still",
	Health:       1,
	Graphics:     Graphics{Mesh: "crate.obj", Texture: "crate.png"},
}

// DefaultDefinitions возвращает новую таблицу встроенных шаблонов.
func DefaultDefinitions() Definitions {
	defs := make(Definitions)
	for _, def := range []ObjectDefinition{Player, Goblin, Archer, Sentry, Turret, Boulder, Terminal, AmmoCrate} {
		defs[def.Name] = def
	}
	return defs
}
