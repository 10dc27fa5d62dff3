package systems

import (
	"tower-server/internal/domain"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// DecideNPC решает, что делать NPC в этом ходу. Не меняет состояние мира:
// при том же снимке и том же зерне rng результат повторяется.
// false - NPC пропускает ход.
func DecideNPC(w WorldView, npc, player *domain.Object, rng RandomSource) (domain.Command, bool) {
	aiLogger := logger.Log.WithFields(logrus.Fields{
		"component": "ai_system",
		"npc":       npc.Name,
		"pos":       npc.Cell(),
	})

	if player != nil {
		toPlayer := player.Pos.Sub(npc.Pos)

		// 1. Соседняя клетка - бьём (шаг в занятую клетку = атака)
		if npc.Pos.IsOrthogonallyAdjacent(player.Pos) {
			dir := domain.DirectionFromVector(toPlayer)
			aiLogger.WithField("dir", dir).Debug("Target adjacent. Action: ATTACK")
			return domain.TryMove(npc, dir), true
		}

		// 2. На одной линии и есть чем стрелять - стреляем, если луч чист
		if npc.Flags.Has(domain.FlagCanShoot) && npc.Ammo > 0 && npc.Pos.IsAligned(player.Pos) {
			if HasLineOfFire(w.Level(), npc.Cell(), player.Cell()) {
				dir := domain.DirectionFromVector(toPlayer)
				aiLogger.WithField("dir", dir).Debug("Target aligned. Action: SHOOT")
				return domain.TryShoot(npc, dir), true
			}
			aiLogger.Debug("Target aligned but line of fire is blocked")
		}
	}

	// 3. Перемещение согласно политике
	switch npc.Movement {
	case domain.MovementLine:
		return lineMove(w, npc)
	case domain.MovementRoam:
		return roamMove(w, npc, player, rng)
	}
	return domain.Command{}, false
}

// lineMove - вперёд, упёрлись - разворот назад.
func lineMove(w WorldView, npc *domain.Object) (domain.Command, bool) {
	forward := npc.Facing
	if forward == domain.DirNone {
		return domain.Command{}, false
	}
	for _, dir := range []domain.Direction{forward, forward.Opposite()} {
		if IsCellFree(w, npc.Cell().Step(dir)) {
			return domain.TryMove(npc, dir), true
		}
	}
	return domain.Command{}, false
}

// roamMove - с вероятностью ChaseProbability жадный шаг к игроку,
// иначе случайное свободное направление. Бросок делается всегда,
// чтобы расход rng не зависел от положения игрока.
func roamMove(w WorldView, npc, player *domain.Object, rng RandomSource) (domain.Command, bool) {
	roll := rng.Float64()

	if player != nil && roll < domain.ChaseProbability {
		dir := domain.DirectionFromVector(player.Pos.Sub(npc.Pos))
		if dir != domain.DirNone && IsCellFree(w, npc.Cell().Step(dir)) {
			return domain.TryMove(npc, dir), true
		}
	}

	for _, dir := range ShuffledDirections(rng) {
		if IsCellFree(w, npc.Cell().Step(dir)) {
			return domain.TryMove(npc, dir), true
		}
	}
	return domain.Command{}, false
}

// ShuffledDirections - перестановка Фишера-Йетса четырёх направлений.
func ShuffledDirections(rng RandomSource) [4]domain.Direction {
	dirs := domain.AllDirections
	for i := len(dirs) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}
