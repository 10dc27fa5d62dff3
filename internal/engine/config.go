package engine

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"tower-server/internal/domain"

	"gopkg.in/yaml.v3"
)

// Поддерживаемые хранилища сессий
const (
	StoreMemory   = "memory"
	StoreJSON     = "json"
	StorePostgres = "postgres"
)

// Config хранит параметры запуска движка
type Config struct {
	// Seed - мастер-зерно. От него зависят процедурные регионы и решения NPC.
	Seed int64 `yaml:"seed"`

	// Данные мира
	RegionPath      string          `yaml:"regionPath"`
	DefinitionsPath string          `yaml:"definitionsPath"`
	StartRegion     string          `yaml:"startRegion"`
	StartLevel      domain.Position `yaml:"startLevel"`
	StartTile       domain.Position `yaml:"startTile"`

	// Сохранения и реплеи
	StoreKind   string `yaml:"store"`
	StorePath   string `yaml:"storePath"`
	DatabaseURL string `yaml:"databaseUrl"`
	ReplayDir   string `yaml:"replayDir"`

	// Сеть
	Addr string `yaml:"addr"`

	// Тайминги (секунды)
	FrameRate          int     `yaml:"frameRate"`
	MoveDuration       float64 `yaml:"moveDuration"`
	TransitionDuration float64 `yaml:"transitionDuration"`
	FadeDuration       float64 `yaml:"fadeDuration"`
	LabelLifetime      float64 `yaml:"labelLifetime"`
	BulletSpeed        float64 `yaml:"bulletSpeed"` // клеток в секунду
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:               time.Now().UnixNano(),
		RegionPath:         "data/regions",
		StartRegion:        "gen:tower",
		StartLevel:         domain.Position{X: 0, Y: 0},
		StartTile:          domain.Position{X: domain.DefaultLevelWidth / 2, Y: domain.DefaultLevelHeight / 2},
		StoreKind:          StoreMemory,
		StorePath:          "data/saves",
		ReplayDir:          "data/replays",
		Addr:               ":8080",
		FrameRate:          30,
		MoveDuration:       0.15,
		TransitionDuration: 0.6,
		FadeDuration:       0.5,
		LabelLifetime:      0.8,
		BulletSpeed:        12,
	}
}

// LoadConfig накладывает YAML-файл и переменные окружения на значения по умолчанию.
// Пустой path - только окружение.
func LoadConfig(path string) (Config, error) {
	cfg := NewConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TOWER_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TOWER_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("TOWER_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("TOWER_STORE"); v != "" {
		c.StoreKind = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	return nil
}

// Validate проверяет значения, без которых сессия не стартует.
func (c Config) Validate() error {
	if c.StartRegion == "" {
		return fmt.Errorf("config: startRegion is required")
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("config: frameRate must be positive, got %d", c.FrameRate)
	}
	switch c.StoreKind {
	case StoreMemory, StoreJSON:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: databaseUrl is required for postgres store")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.StoreKind)
	}
	return nil
}

// StartPortal - точка появления новой сессии.
func (c Config) StartPortal() domain.Portal {
	return domain.Portal{Region: c.StartRegion, Level: c.StartLevel, Tile: c.StartTile}
}

// FrameDuration - шаг симуляции одного кадра.
func (c Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}
