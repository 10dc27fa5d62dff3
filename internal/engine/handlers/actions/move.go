package actions

import (
	"tower-server/internal/domain"
	"tower-server/internal/engine/handlers"
	"tower-server/pkg/api"
)

func HandleMove(ctx handlers.Context, p api.DirectionPayload) (handlers.Result, error) {
	dir := domain.ParseDirection(p.Dir)

	if !ctx.Player.TryMove(dir) {
		// Идёт переход или анимация: ввод молча отбрасывается
		return handlers.EmptyResult(), nil
	}
	return handlers.Result{Accepted: true}, nil
}
