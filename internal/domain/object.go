package domain

import "strings"

// ObjectKind - тип динамического объекта.
type ObjectKind uint8

const (
	ObjectNone ObjectKind = iota
	ObjectCharacter
	ObjectBoulder
	ObjectTerminal
	ObjectPickup
)

var objectStringToKind = map[string]ObjectKind{
	"NONE":      ObjectNone,
	"CHARACTER": ObjectCharacter,
	"BOULDER":   ObjectBoulder,
	"TERMINAL":  ObjectTerminal,
	"PICKUP":    ObjectPickup,
}

var objectKindToString = map[ObjectKind]string{
	ObjectNone:      "none",
	ObjectCharacter: "character",
	ObjectBoulder:   "boulder",
	ObjectTerminal:  "terminal",
	ObjectPickup:    "pickup",
}

func ParseObjectKind(s string) (ObjectKind, bool) {
	val, ok := objectStringToKind[strings.ToUpper(s)]
	return val, ok
}

func (k ObjectKind) String() string {
	if val, ok := objectKindToString[k]; ok {
		return val
	}
	return "none"
}

// MovementPolicy - как NPC перемещается, когда не атакует.
type MovementPolicy uint8

const (
	MovementStill MovementPolicy = iota
	MovementLine
	MovementRoam
)

var movementStringToPolicy = map[string]MovementPolicy{
	"STILL": MovementStill,
	"LINE":  MovementLine,
	"ROAM":  MovementRoam,
}

var movementPolicyToString = map[MovementPolicy]string{
	MovementStill: "still",
	MovementLine:  "line",
	MovementRoam:  "roam",
}

func ParseMovementPolicy(s string) (MovementPolicy, bool) {
	val, ok := movementStringToPolicy[strings.ToUpper(s)]
	return val, ok
}

func (m MovementPolicy) String() string {
	if val, ok := movementPolicyToString[m]; ok {
		return val
	}
	return "still"
}

// ObjectFlags - битовые флаги возможностей объекта.
type ObjectFlags uint8

const (
	FlagPlayerAvatar ObjectFlags = 1 << iota
	FlagCanShoot
	FlagCanRotate
	FlagCanPush
)

func (f ObjectFlags) Has(flag ObjectFlags) bool {
	return f&flag != 0
}

// Object - динамический обитатель ровно одной клетки активной комнаты.
// Визуальной сущностью не владеет: её жизнью управляет хост.
type Object struct {
	Name      string         `json:"name"`
	Kind      ObjectKind     `json:"kind"`
	Entity    EntityID       `json:"entity"`
	Pos       Vec2           `json:"pos"`
	Facing    Direction      `json:"facing"`
	Flags     ObjectFlags    `json:"flags"`
	Movement  MovementPolicy `json:"movement"`
	Health    int            `json:"health"`
	MaxHealth int            `json:"maxHealth"`
	Ammo      int            `json:"ammo"`
}

// Cell - клетка, которую объект занимает.
func (o *Object) Cell() Position {
	return o.Pos.Cell()
}

func (o *Object) IsPlayer() bool {
	return o.Flags.Has(FlagPlayerAvatar)
}

func (o *Object) IsCharacter() bool {
	return o.Kind == ObjectCharacter
}

func (o *Object) IsBoulder() bool {
	return o.Kind == ObjectBoulder
}

// TakeDamage уменьшает здоровье и возвращает остаток.
func (o *Object) TakeDamage(amount int) int {
	o.Health -= amount
	return o.Health
}

// Snapshot - копия состояния для событий и сохранений.
func (o *Object) Snapshot() Object {
	return *o
}
