package actions

import (
	"tower-server/internal/domain"
	"tower-server/internal/engine/handlers"
	"tower-server/pkg/api"
)

func HandleShoot(ctx handlers.Context, p api.DirectionPayload) (handlers.Result, error) {
	dir := domain.ParseDirection(p.Dir)

	if !ctx.Player.TryShoot(dir) {
		return handlers.EmptyResult(), nil
	}
	return handlers.Result{Accepted: true}, nil
}
