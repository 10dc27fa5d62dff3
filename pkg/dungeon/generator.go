package dungeon

import (
	"fmt"
	"math/rand"

	"tower-server/internal/domain"
)

// SpawnRule - какой объект и как часто разбрасывать по комнате.
type SpawnRule struct {
	Object  string
	Density float64
	Rate    float64
}

// RegionOptions - параметры процедурного региона.
type RegionOptions struct {
	Width       int // комнат по горизонтали
	Height      int // комнат по вертикали
	LevelWidth  int
	LevelHeight int
	WallChance  float64
	Spawns      []SpawnRule
	// Next - регион, в который ведут лестницы. Пусто - тот же регион.
	Next string
}

// DefaultRegionOptions - небольшая башня 3x3 со стандартными комнатами.
func DefaultRegionOptions() RegionOptions {
	return RegionOptions{
		Width:       3,
		Height:      3,
		LevelWidth:  domain.DefaultLevelWidth,
		LevelHeight: domain.DefaultLevelHeight,
		WallChance:  0.2,
		Spawns: []SpawnRule{
			{Object: Goblin.Name, Density: 0.03, Rate: 0.5},
			{Object: Archer.Name, Density: 0.01, Rate: 0.5},
			{Object: Boulder.Name, Density: 0.02, Rate: 1},
		},
	}
}

// GenerateLevel строит одну комнату с единственной лестницей.
func GenerateLevel(rng *rand.Rand, opts RegionOptions, portal int) (*domain.Level, error) {
	b := NewLevelBuilder(rng).
		WithSize(opts.LevelWidth, opts.LevelHeight).
		WithObstacles(opts.WallChance).
		WithDoorways().
		Clear(domain.Position{X: opts.LevelWidth / 2, Y: opts.LevelHeight / 2}).
		PlaceStairs(portal)

	for _, rule := range opts.Spawns {
		b.WithSpawns(rule.Object, rule.Density, rule.Rate)
	}
	return b.Build()
}

// GenerateRegion заполняет всю сетку комнатами. Все лестницы ведут
// в центр комнаты (0,0) региона opts.Next.
func GenerateRegion(name string, rng *rand.Rand, opts RegionOptions) (*domain.Region, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("region %q: invalid size %dx%d", name, opts.Width, opts.Height)
	}

	next := opts.Next
	if next == "" {
		next = name
	}

	region := domain.NewRegion(name, opts.Width, opts.Height)
	region.Portals = []domain.Portal{{
		Region: next,
		Level:  domain.Position{X: 0, Y: 0},
		Tile:   domain.Position{X: opts.LevelWidth / 2, Y: opts.LevelHeight / 2},
	}}

	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			level, err := GenerateLevel(rng, opts, 0)
			if err != nil {
				return nil, fmt.Errorf("region %q level (%d,%d): %w", name, x, y, err)
			}
			if err := region.SetLevel(x, y, level); err != nil {
				return nil, err
			}
		}
	}
	return region, nil
}
