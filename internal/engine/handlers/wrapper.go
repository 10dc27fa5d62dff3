package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"tower-server/pkg/api"
)

var (
	ErrPayloadRequired   = errors.New("payload is required")
	ErrUnexpectedPayload = errors.New("command takes no payload")
)

// TypedHandlerFunc - хендлер с уже разобранным и проверенным payload (MOVE, SHOOT).
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - хендлер команды без данных (INIT, CHECKPOINT).
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload превращает типизированный хендлер в HandlerFunc:
// Unmarshal, затем Validate, если T реализует api.Validator.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		if isEmptyPayload(raw) {
			return Result{}, ErrPayloadRequired
		}

		var payload T
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Result{}, fmt.Errorf("invalid payload format: %w", err)
		}

		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return Result{}, fmt.Errorf("validation failed: %w", err)
			}
		}

		return handler(ctx, payload)
	}
}

// WithEmptyPayload - обёртка для команд без данных. Пустой объект и null
// допустимы, любые данные - ошибка: клиент перепутал команду.
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		if !isEmptyPayload(raw) {
			return Result{}, ErrUnexpectedPayload
		}
		return handler(ctx)
	}
}

func isEmptyPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "{}":
		return true
	}
	return false
}
