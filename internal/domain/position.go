package domain

import "math"

// vecEpsilon - допуск при сравнении вещественных координат.
const vecEpsilon = 0.001

// Position - целочисленная клетка сетки.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Shift возвращает новую позицию со смещением.
func (p Position) Shift(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Step - соседняя клетка в направлении d.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return p.Shift(dx, dy)
}

func (p Position) Vec() Vec2 {
	return Vec2{X: float64(p.X), Y: float64(p.Y)}
}

// Vec2 - вещественная позиция. У объектов в покое всегда целая.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Cell округляет позицию до ближайшей клетки.
func (v Vec2) Cell() Position {
	return Position{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

// Lerp - линейная интерполяция между v и o, t в [0, 1].
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// IsOrthogonallyAdjacent: ровно одна клетка по одной оси (с допуском).
func (v Vec2) IsOrthogonallyAdjacent(o Vec2) bool {
	dx := math.Abs(v.X - o.X)
	dy := math.Abs(v.Y - o.Y)
	if dx < vecEpsilon {
		return math.Abs(dy-1) < vecEpsilon
	}
	if dy < vecEpsilon {
		return math.Abs(dx-1) < vecEpsilon
	}
	return false
}

// IsAligned: на одной строке или одном столбце.
func (v Vec2) IsAligned(o Vec2) bool {
	return math.Abs(v.X-o.X) < vecEpsilon || math.Abs(v.Y-o.Y) < vecEpsilon
}

// ManhattanTo - расстояние в клетках по сетке.
func (v Vec2) ManhattanTo(o Vec2) int {
	return int(math.Round(math.Abs(v.X-o.X) + math.Abs(v.Y-o.Y)))
}
