package handlers

import (
	"context"
	"encoding/json"

	"tower-server/internal/domain"
)

// PlayerController - то, чем хендлеры управляют. Controller движка
// неявно реализует этот интерфейс.
type PlayerController interface {
	TryMove(dir domain.Direction) bool
	TryShoot(dir domain.Direction) bool
	Checkpoint(ctx context.Context) error
}

// Context передает хендлеру состояние сессии.
type Context struct {
	Ctx    context.Context
	Player PlayerController
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в логи сессии напрямую, он возвращает данные.
type Result struct {
	Accepted bool   // Команда дошла до движка ходов
	Msg      string // Текст лога
	MsgType  string // Тип лога (INFO, ERROR)
}

// HandlerFunc - это контракт для любой команды (MOVE, SHOOT, etc).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
