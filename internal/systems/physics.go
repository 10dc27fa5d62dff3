package systems

import (
	"tower-server/internal/domain"
)

// ProbeResult - что пуля нашла в своей текущей клетке.
type ProbeResult struct {
	Cell    domain.Position
	Hit     bool // попадание: стена, закрытый элемент или объект
	Expired bool // вылет за пределы комнаты - пуля исчезает молча
}

// ProbeProjectile проверяет позицию пули. Клетка выстрела (origin)
// игнорируется, чтобы стрелок не попал сам в себя.
func ProbeProjectile(w WorldView, origin domain.Position, pos domain.Vec2) ProbeResult {
	cell := pos.Cell()
	res := ProbeResult{Cell: cell}

	if cell == origin {
		return res
	}

	tile, ok := w.Level().TileAt(cell)
	if !ok {
		res.Expired = true
		return res
	}
	if !tile.Walkable || w.ObjectAt(cell.X, cell.Y) != nil {
		res.Hit = true
		return res
	}
	if f := w.FeatureAt(cell.X, cell.Y); f != nil && f.Blocks() {
		res.Hit = true
	}
	return res
}

// HasLineOfFire: все клетки строго между from и to проходимы.
// from и to должны лежать на одной строке или столбце.
func HasLineOfFire(level *domain.Level, from, to domain.Position) bool {
	dir := domain.DirectionFromVector(to.Vec().Sub(from.Vec()))
	if dir == domain.DirNone {
		return true
	}
	dist := from.Vec().ManhattanTo(to.Vec())
	return level.ScanRay(domain.IsTileWalkable, from, dir, dist-1)
}
