package domain

import (
	"math"
	"strings"
)

// Direction - одно из четырёх направлений по сетке.
type Direction uint8

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// AllDirections - фиксированный порядок обхода (важен для детерминизма AI).
var AllDirections = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

var directionStringToDir = map[string]Direction{
	"UP":    DirUp,
	"DOWN":  DirDown,
	"LEFT":  DirLeft,
	"RIGHT": DirRight,
}

var directionDirToString = map[Direction]string{
	DirNone:  "NONE",
	DirUp:    "UP",
	DirDown:  "DOWN",
	DirLeft:  "LEFT",
	DirRight: "RIGHT",
}

// ParseDirection конвертирует строку из JSON в Direction (регистр не важен).
func ParseDirection(s string) Direction {
	if val, ok := directionStringToDir[strings.ToUpper(s)]; ok {
		return val
	}
	return DirNone
}

func (d Direction) String() string {
	if val, ok := directionDirToString[d]; ok {
		return val
	}
	return "NONE"
}

// Delta возвращает целочисленное смещение. Ось Y направлена вниз.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Vector - то же смещение в виде вещественного вектора (для физики пуль).
func (d Direction) Vector() Vec2 {
	dx, dy := d.Delta()
	return Vec2{X: float64(dx), Y: float64(dy)}
}

func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

// DirectionFromVector выбирает направление по доминирующей оси.
// При равенстве осей побеждает горизонталь.
func DirectionFromVector(v Vec2) Direction {
	ax, ay := math.Abs(v.X), math.Abs(v.Y)
	if ax < vecEpsilon && ay < vecEpsilon {
		return DirNone
	}
	if ax >= ay {
		if v.X > 0 {
			return DirRight
		}
		return DirLeft
	}
	if v.Y > 0 {
		return DirDown
	}
	return DirUp
}
