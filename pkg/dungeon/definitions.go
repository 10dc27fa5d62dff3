package dungeon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tower-server/internal/domain"

	"gopkg.in/yaml.v3"
)

// Format - формат файла данных.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatYAML
	FormatLua
)

// FormatFromPath определяет формат по расширению.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".lua":
		return FormatLua, nil
	}
	return 0, fmt.Errorf("unsupported data file extension: %q", path)
}

// Graphics - визуальные ресурсы шаблона.
type Graphics struct {
	Mesh    string `json:"mesh" yaml:"mesh"`
	Texture string `json:"texture" yaml:"texture"`
}

// ObjectDefinition - именованный шаблон объекта из файла определений.
type ObjectDefinition struct {
	Name         string   `json:"-" yaml:"-"`
	Type         string   `json:"type" yaml:"type"`
	MovementType string   `json:"movementType" yaml:"movementType"`
	Health       int      `json:"health" yaml:"health"`
	Ammo         int      `json:"ammo" yaml:"ammo"`
	CanShoot     bool     `json:"canShoot" yaml:"canShoot"`
	CanRotate    bool     `json:"canRotate" yaml:"canRotate"`
	CanPush      bool     `json:"canPush" yaml:"canPush"`
	PlayerAvatar bool     `json:"playerAvatar" yaml:"playerAvatar"`
	Graphics     Graphics `json:"graphics" yaml:"graphics"`
}

// Definitions - таблица шаблонов по имени.
type Definitions map[string]ObjectDefinition

func (d Definitions) Lookup(name string) (ObjectDefinition, bool) {
	def, ok := d[name]
	return def, ok
}

// Player возвращает шаблон аватара игрока (первый по алфавиту, если их несколько).
func (d Definitions) Player() (ObjectDefinition, bool) {
	names := make([]string, 0, len(d))
	for name, def := range d {
		if def.PlayerAvatar {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ObjectDefinition{}, false
	}
	sort.Strings(names)
	return d[names[0]], true
}

// Instantiate создаёт объект из шаблона. Сущность хоста не создаётся.
func (def ObjectDefinition) Instantiate(pos domain.Position, dir domain.Direction) *domain.Object {
	kind, _ := domain.ParseObjectKind(def.Type)
	movement, _ := domain.ParseMovementPolicy(def.MovementType)

	var flags domain.ObjectFlags
	if def.PlayerAvatar {
		flags |= domain.FlagPlayerAvatar
	}
	if def.CanShoot {
		flags |= domain.FlagCanShoot
	}
	if def.CanRotate {
		flags |= domain.FlagCanRotate
	}
	if def.CanPush {
		flags |= domain.FlagCanPush
	}

	return &domain.Object{
		Name:      def.Name,
		Kind:      kind,
		Pos:       pos.Vec(),
		Facing:    dir,
		Flags:     flags,
		Movement:  movement,
		Health:    def.Health,
		MaxHealth: def.Health,
		Ammo:      def.Ammo,
	}
}

// normalize проверяет поля и проставляет значения по умолчанию.
func (def *ObjectDefinition) normalize(name string) error {
	def.Name = name
	if def.Type == "" {
		return fmt.Errorf("object %q: type is required", name)
	}
	if _, ok := domain.ParseObjectKind(def.Type); !ok {
		return fmt.Errorf("object %q: unknown type %q", name, def.Type)
	}
	if def.MovementType == "" {
		def.MovementType = domain.MovementStill.String()
	}
	if _, ok := domain.ParseMovementPolicy(def.MovementType); !ok {
		return fmt.Errorf("object %q: unknown movementType %q", name, def.MovementType)
	}
	if def.Health <= 0 {
		def.Health = 1
	}
	if def.Ammo < 0 {
		return fmt.Errorf("object %q: negative ammo", name)
	}
	return nil
}

// ParseDefinitions разбирает файл определений (JSON/YAML - объект "имя -> шаблон").
func ParseDefinitions(data []byte, format Format) (Definitions, error) {
	raw := make(map[string]ObjectDefinition)

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing definitions json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing definitions yaml: %w", err)
		}
	case FormatLua:
		defs, err := parseLuaDefinitions(string(data))
		if err != nil {
			return nil, err
		}
		raw = defs
	default:
		return nil, fmt.Errorf("unsupported definitions format %d", format)
	}

	defs := make(Definitions, len(raw))
	for name, def := range raw {
		if err := def.normalize(name); err != nil {
			return nil, err
		}
		defs[name] = def
	}
	return defs, nil
}

// LoadDefinitions читает файл определений. Ошибка здесь фатальна для старта.
func LoadDefinitions(path string) (Definitions, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions %s: %w", path, err)
	}
	defs, err := ParseDefinitions(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}
