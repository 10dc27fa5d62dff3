package actions

import (
	"fmt"

	"tower-server/internal/engine/handlers"
	"tower-server/pkg/api"
)

func HandleCheckpoint(ctx handlers.Context) (handlers.Result, error) {
	if err := ctx.Player.Checkpoint(ctx.Ctx); err != nil {
		return handlers.Result{Msg: "Не удалось сохранить игру.", MsgType: api.LogError}, fmt.Errorf("checkpoint: %w", err)
	}
	return handlers.Result{
		Accepted: true,
		Msg:      "Игра сохранена.",
		MsgType:  api.LogInfo,
	}, nil
}
