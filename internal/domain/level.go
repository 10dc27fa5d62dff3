package domain

import "fmt"

// Level - прямоугольная сетка тайлов одной комнаты.
// Владеет своим массивом эксклюзивно: конструктор копирует буфер.
type Level struct {
	width  int
	height int
	tiles  []Tile

	// Визуальный якорь уровня (статический меш). Создаётся один раз.
	anchor      EntityID
	initialized bool
}

// NewLevel копирует плоский буфер тайлов (индекс x + width*y).
func NewLevel(width, height int, tiles []Tile) (*Level, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(tiles) != width*height {
		return nil, fmt.Errorf("%w: expected %d tiles, got %d", ErrInvalidDimensions, width*height, len(tiles))
	}

	own := make([]Tile, len(tiles))
	copy(own, tiles)

	return &Level{width: width, height: height, tiles: own}, nil
}

func (l *Level) Width() int  { return l.width }
func (l *Level) Height() int { return l.height }

func (l *Level) Index(x, y int) int {
	return x + l.width*y
}

// CellOf - обратное преобразование индекса в клетку.
func (l *Level) CellOf(idx int) Position {
	return Position{X: idx % l.width, Y: idx / l.width}
}

func (l *Level) InBounds(x, y int) bool {
	return x >= 0 && x < l.width && y >= 0 && y < l.height
}

// Tile возвращает тайл или false, если координаты вне сетки.
func (l *Level) Tile(x, y int) (Tile, bool) {
	if !l.InBounds(x, y) {
		return Tile{}, false
	}
	return l.tiles[l.Index(x, y)], true
}

func (l *Level) TileAt(p Position) (Tile, bool) {
	return l.Tile(p.X, p.Y)
}

// IsPointWalkable округляет позицию до клетки. Вне сетки - false.
func (l *Level) IsPointWalkable(v Vec2) bool {
	t, ok := l.TileAt(v.Cell())
	return ok && t.Walkable
}

// ScanRay проверяет pred на distance клетках подряд, начиная со следующей
// за start. Клетка вне сетки считается проваленной проверкой.
func (l *Level) ScanRay(pred func(Tile) bool, start Position, dir Direction, distance int) bool {
	cur := start
	for i := 0; i < distance; i++ {
		cur = cur.Step(dir)
		t, ok := l.TileAt(cur)
		if !ok || !pred(t) {
			return false
		}
	}
	return true
}

// Initialize привязывает визуальный якорь. Повторный вызов - ошибка.
func (l *Level) Initialize(anchor EntityID) error {
	if l.initialized {
		return ErrAlreadyInitialized
	}
	l.anchor = anchor
	l.initialized = true
	return nil
}

func (l *Level) Initialized() bool { return l.initialized }

func (l *Level) Anchor() EntityID { return l.anchor }

// Tiles возвращает копию буфера (для сериализации).
func (l *Level) Tiles() []Tile {
	out := make([]Tile, len(l.tiles))
	copy(out, l.tiles)
	return out
}
