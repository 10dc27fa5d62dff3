package dungeon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"tower-server/internal/domain"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownSymbol = errors.New("unknown tile symbol")
	ErrRaggedLevel   = errors.New("level rows have unequal length")
)

// TileTemplate - запись таблицы символов.
type TileTemplate struct {
	Walkable  bool     `json:"walkable" yaml:"walkable"`
	Stairs    bool     `json:"stairs,omitempty" yaml:"stairs,omitempty"`
	Object    string   `json:"object,omitempty" yaml:"object,omitempty"`
	SpawnRate *float64 `json:"spawnRate,omitempty" yaml:"spawnRate,omitempty"`
	Feature   string   `json:"feature,omitempty" yaml:"feature,omitempty"`
	Target    []int    `json:"target,omitempty" yaml:"target,omitempty"`
	Portal    *int     `json:"portal,omitempty" yaml:"portal,omitempty"`
	Graphics  string   `json:"graphics,omitempty" yaml:"graphics,omitempty"`
}

// LevelFile - одна комната. Локальная таблица символов перекрывает общую.
type LevelFile struct {
	Tiles map[string]TileTemplate `json:"tiles,omitempty" yaml:"tiles,omitempty"`
	Data  []string                `json:"data" yaml:"data"`
}

type PortalFile struct {
	Region string `json:"region" yaml:"region"`
	Level  []int  `json:"level" yaml:"level"`
	Tile   []int  `json:"tile" yaml:"tile"`
}

// RegionFile - файл региона. Levels идут по строкам сетки комнат,
// null - комнаты нет.
type RegionFile struct {
	Width   int                     `json:"width" yaml:"width"`
	Height  int                     `json:"height" yaml:"height"`
	Tiles   map[string]TileTemplate `json:"tiles" yaml:"tiles"`
	Levels  []*LevelFile            `json:"levels" yaml:"levels"`
	Portals []PortalFile            `json:"portals,omitempty" yaml:"portals,omitempty"`
}

func pair(v []int, field string) (domain.Position, error) {
	if len(v) != 2 {
		return domain.Position{}, fmt.Errorf("%s: expected [x, y], got %v", field, v)
	}
	return domain.Position{X: v[0], Y: v[1]}, nil
}

func (t TileTemplate) toTile(width, height int) (domain.Tile, error) {
	tile := domain.Tile{
		Walkable:      t.Walkable,
		IsStairs:      t.Stairs,
		SpawnObject:   t.Object,
		FeatureTarget: domain.NoLink,
		Portal:        domain.NoLink,
		Graphics:      t.Graphics,
	}

	if t.Object != "" {
		tile.SpawnProbability = 1
		if t.SpawnRate != nil {
			tile.SpawnProbability = *t.SpawnRate
		}
		if tile.SpawnProbability < 0 || tile.SpawnProbability > 1 {
			return tile, fmt.Errorf("spawnRate %v outside [0, 1]", tile.SpawnProbability)
		}
	}

	kind, ok := domain.ParseFeatureKind(t.Feature)
	if !ok {
		return tile, fmt.Errorf("unknown feature %q", t.Feature)
	}
	tile.Feature = kind

	if t.Target != nil {
		target, err := pair(t.Target, "target")
		if err != nil {
			return tile, err
		}
		if target.X < 0 || target.X >= width || target.Y < 0 || target.Y >= height {
			return tile, fmt.Errorf("target %v outside level %dx%d", t.Target, width, height)
		}
		tile.FeatureTarget = target.X + width*target.Y
	}

	if t.Portal != nil {
		tile.Portal = *t.Portal
	}
	return tile, nil
}

// Build превращает файл в регион. name - имя, под которым регион известен порталам.
func (f *RegionFile) Build(name string) (*domain.Region, error) {
	log := logger.Log.WithFields(logrus.Fields{"component": "region_loader", "region": name})

	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("region %q: invalid size %dx%d", name, f.Width, f.Height)
	}
	if len(f.Levels) > f.Width*f.Height {
		return nil, fmt.Errorf("region %q: %d levels do not fit %dx%d grid", name, len(f.Levels), f.Width, f.Height)
	}

	declared := mapset.New[string]()
	for sym := range f.Tiles {
		if utf8.RuneCountInString(sym) != 1 {
			return nil, fmt.Errorf("region %q: tile symbol %q must be a single character", name, sym)
		}
		declared.Put(sym)
	}
	used := mapset.New[string]()

	region := domain.NewRegion(name, f.Width, f.Height)
	levelW, levelH := -1, -1

	for i, lf := range f.Levels {
		if lf == nil {
			continue
		}
		x, y := i%f.Width, i/f.Width

		level, err := f.buildLevel(lf, &used)
		if err != nil {
			return nil, fmt.Errorf("region %q level (%d,%d): %w", name, x, y, err)
		}

		// Все комнаты региона одного размера: иначе шов не сойдётся
		if levelW < 0 {
			levelW, levelH = level.Width(), level.Height()
		} else if level.Width() != levelW || level.Height() != levelH {
			return nil, fmt.Errorf("region %q level (%d,%d): size %dx%d differs from %dx%d",
				name, x, y, level.Width(), level.Height(), levelW, levelH)
		}

		if err := region.SetLevel(x, y, level); err != nil {
			return nil, err
		}
	}
	if levelW < 0 {
		return nil, fmt.Errorf("region %q: no levels", name)
	}

	for i, p := range f.Portals {
		lvl, err := pair(p.Level, fmt.Sprintf("portal %d level", i))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
		tile, err := pair(p.Tile, fmt.Sprintf("portal %d tile", i))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
		if p.Region == "" {
			return nil, fmt.Errorf("region %q: portal %d has no destination region", name, i)
		}
		region.Portals = append(region.Portals, domain.Portal{Region: p.Region, Level: lvl, Tile: tile})
	}

	// Диагностика качества данных: не мешает загрузке
	declared.Each(func(sym string) {
		if !used.Has(sym) {
			log.WithField("symbol", sym).Debug("Tile symbol declared but never used")
		}
	})
	region.Each(func(pos domain.Position, l *domain.Level) {
		for _, t := range l.Tiles() {
			if t.Portal != domain.NoLink && t.Portal >= len(region.Portals) {
				log.WithFields(logrus.Fields{"room": pos, "portal": t.Portal}).Warn("Tile references missing portal")
			}
		}
	})

	return region, nil
}

func (f *RegionFile) buildLevel(lf *LevelFile, used *mapset.Set[string]) (*domain.Level, error) {
	if len(lf.Data) == 0 {
		return nil, errors.New("level has no data rows")
	}
	height := len(lf.Data)
	width := utf8.RuneCountInString(lf.Data[0])

	tiles := make([]domain.Tile, 0, width*height)
	for y, row := range lf.Data {
		if utf8.RuneCountInString(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedLevel, y, utf8.RuneCountInString(row), width)
		}
		for x, r := range []rune(row) {
			sym := string(r)
			tmpl, ok := lf.Tiles[sym]
			if !ok {
				tmpl, ok = f.Tiles[sym]
				if ok {
					used.Put(sym)
				}
			}
			if !ok {
				return nil, fmt.Errorf("%w %q at (%d,%d)", ErrUnknownSymbol, sym, x, y)
			}
			tile, err := tmpl.toTile(width, height)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", sym, err)
			}
			tiles = append(tiles, tile)
		}
	}

	return domain.NewLevel(width, height, tiles)
}

// ParseRegion разбирает содержимое файла региона.
func ParseRegion(name string, data []byte, format Format) (*domain.Region, error) {
	var file RegionFile
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing region %q json: %w", name, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing region %q yaml: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("unsupported region format %d", format)
	}
	return file.Build(name)
}

// LoadRegionFile читает регион с диска; имя региона - имя файла без расширения.
func LoadRegionFile(path string) (*domain.Region, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading region %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseRegion(name, data, format)
}

// symbolAlphabet - символы, которые EncodeRegion раздаёт уникальным тайлам.
const symbolAlphabet = ".#>+=abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func templateOf(t domain.Tile, width int) TileTemplate {
	tmpl := TileTemplate{
		Walkable: t.Walkable,
		Stairs:   t.IsStairs,
		Object:   t.SpawnObject,
		Graphics: t.Graphics,
	}
	if t.SpawnObject != "" {
		rate := t.SpawnProbability
		tmpl.SpawnRate = &rate
	}
	if t.Feature != domain.FeatureNone {
		tmpl.Feature = t.Feature.String()
	}
	if t.FeatureTarget != domain.NoLink {
		tmpl.Target = []int{t.FeatureTarget % width, t.FeatureTarget / width}
	}
	if t.Portal != domain.NoLink {
		portal := t.Portal
		tmpl.Portal = &portal
	}
	return tmpl
}

// EncodeRegion строит файл, из которого ParseRegion восстановит те же тайлы.
func EncodeRegion(r *domain.Region) (*RegionFile, error) {
	file := &RegionFile{
		Width:  r.Width,
		Height: r.Height,
		Tiles:  make(map[string]TileTemplate),
		Levels: make([]*LevelFile, r.Width*r.Height),
	}

	symbols := make(map[domain.Tile]string)
	alphabet := []rune(symbolAlphabet)
	var encodeErr error

	r.Each(func(pos domain.Position, l *domain.Level) {
		if encodeErr != nil {
			return
		}
		rows := make([]string, l.Height())
		tiles := l.Tiles()
		for y := 0; y < l.Height(); y++ {
			var sb strings.Builder
			for x := 0; x < l.Width(); x++ {
				t := tiles[l.Index(x, y)]
				sym, ok := symbols[t]
				if !ok {
					if len(symbols) >= len(alphabet) {
						encodeErr = fmt.Errorf("region %q: more than %d distinct tiles", r.Name, len(alphabet))
						return
					}
					sym = string(alphabet[len(symbols)])
					symbols[t] = sym
					file.Tiles[sym] = templateOf(t, l.Width())
				}
				sb.WriteString(sym)
			}
			rows[y] = sb.String()
		}
		file.Levels[pos.X+r.Width*pos.Y] = &LevelFile{Data: rows}
	})
	if encodeErr != nil {
		return nil, encodeErr
	}

	for _, p := range r.Portals {
		file.Portals = append(file.Portals, PortalFile{
			Region: p.Region,
			Level:  []int{p.Level.X, p.Level.Y},
			Tile:   []int{p.Tile.X, p.Tile.Y},
		})
	}
	return file, nil
}

// Marshal сериализует файл региона в нужный формат.
func (f *RegionFile) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	case FormatYAML:
		return yaml.Marshal(f)
	}
	return nil, fmt.Errorf("unsupported region format %d", format)
}
