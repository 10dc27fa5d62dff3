package domain

import "strings"

// NoLink - значение для отсутствующей ссылки (цель кнопки, портал).
const NoLink = -1

// FeatureKind - тип интерактивного элемента клетки.
type FeatureKind uint8

const (
	FeatureNone FeatureKind = iota
	FeatureButton
	FeatureDoor
	FeatureSpikes
	FeatureBreakableFloor
)

var featureStringToKind = map[string]FeatureKind{
	"":                FeatureNone,
	"NONE":            FeatureNone,
	"BUTTON":          FeatureButton,
	"DOOR":            FeatureDoor,
	"SPIKES":          FeatureSpikes,
	"BREAKABLE_FLOOR": FeatureBreakableFloor,
}

var featureKindToString = map[FeatureKind]string{
	FeatureNone:           "none",
	FeatureButton:         "button",
	FeatureDoor:           "door",
	FeatureSpikes:         "spikes",
	FeatureBreakableFloor: "breakable_floor",
}

// ParseFeatureKind возвращает false для незнакомого имени.
func ParseFeatureKind(s string) (FeatureKind, bool) {
	val, ok := featureStringToKind[strings.ToUpper(s)]
	return val, ok
}

func (k FeatureKind) String() string {
	if val, ok := featureKindToString[k]; ok {
		return val
	}
	return "none"
}

// Tile - статическое описание клетки. После загрузки уровня не меняется.
type Tile struct {
	Walkable         bool
	IsStairs         bool
	SpawnProbability float64
	SpawnObject      string // имя шаблона объекта, "" - ничего
	Feature          FeatureKind
	FeatureTarget    int // индекс клетки цели (кнопка -> дверь), NoLink если нет
	Portal           int // индекс портала региона, NoLink если нет
	Graphics         string
}

// Wall - непроходимая клетка без связей.
func Wall() Tile {
	return Tile{FeatureTarget: NoLink, Portal: NoLink, Graphics: "wall"}
}

// Floor - пустой проходимый пол.
func Floor() Tile {
	return Tile{Walkable: true, FeatureTarget: NoLink, Portal: NoLink, Graphics: "floor"}
}

// IsTileWalkable - предикат для ScanRay.
func IsTileWalkable(t Tile) bool {
	return t.Walkable
}
