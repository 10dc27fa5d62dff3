package actions

import (
	"tower-server/internal/engine/handlers"
	"tower-server/pkg/api"
)

func HandleInit(ctx handlers.Context) (handlers.Result, error) {
	return handlers.Result{
		Msg:     "Добро пожаловать в башню.",
		MsgType: api.LogInfo,
	}, nil
}
