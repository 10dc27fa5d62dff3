package api

import (
	"errors"
	"strings"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

var validDirections = map[string]bool{
	"UP":    true,
	"DOWN":  true,
	"LEFT":  true,
	"RIGHT": true,
}

func (p DirectionPayload) Validate() error {
	if p.Dir == "" {
		return errors.New("dir is required")
	}
	if !validDirections[strings.ToUpper(p.Dir)] {
		return errors.New("dir must be one of UP, DOWN, LEFT, RIGHT")
	}
	return nil
}
