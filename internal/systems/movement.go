package systems

import (
	"tower-server/internal/domain"
)

// MovementResult - результат вычисления движения
type MovementResult struct {
	Target      domain.Position
	HasMoved    bool
	OutOfBounds bool           // Шаг за край комнаты
	BlockedBy   *domain.Object // Если врезались в кого-то (для атаки)
	IsWall      bool           // Стена, закрытая дверь или провал
}

// CalculateMove вычисляет результат шага. Не меняет состояние мира!
func CalculateMove(w WorldView, actor *domain.Object, dir domain.Direction) MovementResult {
	target := actor.Cell().Step(dir)
	res := MovementResult{Target: target}

	// 1. Проверка границ
	tile, ok := w.Level().TileAt(target)
	if !ok {
		res.OutOfBounds = true
		return res
	}

	// 2. Занятая клетка - это атака, а не движение
	if other := w.ObjectAt(target.X, target.Y); other != nil && other != actor {
		res.BlockedBy = other
		return res
	}

	// 3. Стены и закрытые элементы
	if !tile.Walkable {
		res.IsWall = true
		return res
	}
	if f := w.FeatureAt(target.X, target.Y); f != nil && f.Blocks() {
		res.IsWall = true
		return res
	}

	res.HasMoved = true
	return res
}
