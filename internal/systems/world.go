package systems

import "tower-server/internal/domain"

// WorldView - то, что правилам нужно знать о текущей комнате.
// Реализуется реестром объектов движка; системы его не мутируют.
type WorldView interface {
	Level() *domain.Level
	ObjectAt(x, y int) *domain.Object
	FeatureAt(x, y int) *domain.Feature
}

// RandomSource - общий поток случайных чисел (*rand.Rand подходит).
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// IsCellFree: клетка в пределах комнаты, проходима, пуста и не закрыта дверью/провалом.
func IsCellFree(w WorldView, p domain.Position) bool {
	tile, ok := w.Level().TileAt(p)
	if !ok || !tile.Walkable {
		return false
	}
	if w.ObjectAt(p.X, p.Y) != nil {
		return false
	}
	if f := w.FeatureAt(p.X, p.Y); f != nil && f.Blocks() {
		return false
	}
	return true
}
