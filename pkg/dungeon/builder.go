package dungeon

import (
	"math/rand"

	"tower-server/internal/domain"
)

// LevelBuilder предоставляет fluent API для процедурной сборки комнаты.
// Все случайные решения берутся из переданного rng, поэтому при том же
// зерне результат повторяется.
type LevelBuilder struct {
	width  int
	height int
	tiles  []domain.Tile
	rng    *rand.Rand
}

// NewLevelBuilder создаёт комнату стандартного размера, целиком из пола.
func NewLevelBuilder(rng *rand.Rand) *LevelBuilder {
	b := &LevelBuilder{rng: rng}
	return b.WithSize(domain.DefaultLevelWidth, domain.DefaultLevelHeight)
}

// WithSize меняет размер и сбрасывает сетку.
func (b *LevelBuilder) WithSize(width, height int) *LevelBuilder {
	b.width = width
	b.height = height
	b.tiles = make([]domain.Tile, width*height)
	for i := range b.tiles {
		b.tiles[i] = domain.Floor()
	}
	return b
}

func (b *LevelBuilder) index(x, y int) int {
	return x + b.width*y
}

func (b *LevelBuilder) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// WithObstacles - равномерное случайное заполнение: каждая клетка
// становится стеной с вероятностью chance.
func (b *LevelBuilder) WithObstacles(chance float64) *LevelBuilder {
	for i := range b.tiles {
		if b.rng.Float64() < chance {
			b.tiles[i] = domain.Wall()
		} else {
			b.tiles[i] = domain.Floor()
		}
	}
	return b
}

// WithSpawns помечает часть клеток пола точками спавна object.
// density - доля помеченных клеток, rate - вероятность спавна при входе в комнату.
func (b *LevelBuilder) WithSpawns(object string, density, rate float64) *LevelBuilder {
	for i := range b.tiles {
		t := &b.tiles[i]
		if !t.Walkable || t.IsStairs || t.SpawnObject != "" {
			continue
		}
		if b.rng.Float64() < density {
			t.SpawnObject = object
			t.SpawnProbability = rate
		}
	}
	return b
}

// WithDoorways открывает середины всех четырёх краёв, чтобы через шов
// между соседними комнатами всегда был проход.
func (b *LevelBuilder) WithDoorways() *LevelBuilder {
	midX, midY := b.width/2, b.height/2
	for _, p := range []domain.Position{{X: midX, Y: 0}, {X: midX, Y: b.height - 1}, {X: 0, Y: midY}, {X: b.width - 1, Y: midY}} {
		b.Clear(p)
	}
	return b
}

// Clear делает клетку пустым полом.
func (b *LevelBuilder) Clear(p domain.Position) *LevelBuilder {
	if b.inBounds(p.X, p.Y) {
		b.tiles[b.index(p.X, p.Y)] = domain.Floor()
	}
	return b
}

// PlaceStairs ставит лестницу в случайную внутреннюю клетку и открывает
// соседей слева и справа, чтобы до неё можно было дойти.
func (b *LevelBuilder) PlaceStairs(portal int) *LevelBuilder {
	if b.width < 3 || b.height < 3 {
		return b
	}
	x := 1 + b.rng.Intn(b.width-2)
	y := 1 + b.rng.Intn(b.height-2)

	b.Clear(domain.Position{X: x - 1, Y: y})
	b.Clear(domain.Position{X: x + 1, Y: y})

	stairs := domain.Floor()
	stairs.IsStairs = true
	stairs.Portal = portal
	stairs.Graphics = "stairs"
	b.tiles[b.index(x, y)] = stairs
	return b
}

// Build собирает готовую комнату.
func (b *LevelBuilder) Build() (*domain.Level, error) {
	return domain.NewLevel(b.width, b.height, b.tiles)
}
