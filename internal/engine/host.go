package engine

import (
	"tower-server/internal/domain"
	"tower-server/internal/systems"
)

// MessageKind - тип сообщения визуальной сущности хоста.
type MessageKind uint8

const (
	MsgUnknown       MessageKind = iota
	MsgMove                      // Pos: клетка назначения, плавный шаг
	MsgBounce                    // Dir: дёрнуться в сторону и вернуться
	MsgAttack                    // Dir: выпад в сторону цели
	MsgHurt                      // вспышка получения урона
	MsgSetPosition               // Pos: мгновенная установка позиции
	MsgFeatureState              // Value: 1 - active, 0 - inactive
	MsgFade                      // Duration: затемнение экрана
	MsgLevelOffset               // Pos: смещение якоря комнаты, Value: 1 - видима
	MsgAnimationDone             // From: чья анимация закончилась
)

var messageKindToString = map[MessageKind]string{
	MsgMove:          "move",
	MsgBounce:        "bounce",
	MsgAttack:        "attack",
	MsgHurt:          "hurt",
	MsgSetPosition:   "set_position",
	MsgFeatureState:  "feature_state",
	MsgFade:          "fade",
	MsgLevelOffset:   "level_offset",
	MsgAnimationDone: "animation_done",
}

func (k MessageKind) String() string {
	if val, ok := messageKindToString[k]; ok {
		return val
	}
	return "unknown"
}

// Message - типизированное сообщение с полезной нагрузкой.
// Какие поля значимы, зависит от Kind.
type Message struct {
	Kind     MessageKind
	Pos      domain.Vec2
	Dir      domain.Direction
	Value    float64
	Text     string
	Duration float64
	From     domain.EntityID
}

// PhysicsSpec - непрерывная симуляция сущности (пули).
// Хост каждый кадр сдвигает позицию на Velocity*dt и вызывает Probe;
// при попадании или вылете вызывает OnHit один раз и удаляет сущность.
type PhysicsSpec struct {
	Velocity domain.Vec2
	Probe    func(pos domain.Vec2) systems.ProbeResult
	OnHit    func(res systems.ProbeResult)
}

// EntitySpec - описание создаваемой визуальной сущности.
type EntitySpec struct {
	Kind     domain.EntityKind
	Room     int16
	Name     string
	Pos      domain.Vec2
	Facing   domain.Direction
	Mesh     string
	Texture  string
	Text     string
	Lifetime float64 // > 0 - сущность удаляется сама через Lifetime секунд
	Physics  *PhysicsSpec
}

// Host - внешний движок: создаёт сущности и доставляет им сообщения.
// Удаление откладывается до конца кадра.
type Host interface {
	CreateEntity(spec EntitySpec) domain.EntityID
	DestroyEntity(id domain.EntityID)
	Send(id domain.EntityID, msg Message)
	Broadcast(msg Message)
	Position(id domain.EntityID) (domain.Vec2, bool)
}

// World - хост, которому нужен покадровый тик.
type World interface {
	Host
	Update(dt float64)
}
