package scene

import (
	"tower-server/internal/domain"
	"tower-server/internal/engine"
)

// Behavior - одна единица поведения сущности. Сущность держит
// упорядоченный список поведений и раздаёт им тики и сообщения.
type Behavior interface {
	Init(e *Entity)
	Update(e *Entity, dt float64)
	Accepts(msg engine.Message) bool
	Handle(e *Entity, msg engine.Message)
}

// Entity - визуальная сущность сцены.
type Entity struct {
	ID   domain.EntityID
	Spec engine.EntitySpec

	Pos     domain.Vec2 // визуальная позиция (клетки, дробная)
	Facing  domain.Direction
	Offset  domain.Vec2 // смещение якоря комнаты
	Visible bool
	State   float64 // состояние элемента (1 - active)
	Flash   float64 // оставшееся время вспышки урона
	Text    string

	scene     *Scene
	behaviors []Behavior
	dead      bool
}

func (e *Entity) init() {
	for _, b := range e.behaviors {
		b.Init(e)
	}
}

func (e *Entity) update(dt float64) {
	for _, b := range e.behaviors {
		if e.dead {
			return
		}
		b.Update(e, dt)
	}
}

func (e *Entity) deliver(msg engine.Message) {
	for _, b := range e.behaviors {
		if b.Accepts(msg) {
			b.Handle(e, msg)
		}
	}
}

// Emit отдаёт сообщение слушателю сцены (контроллеру).
func (e *Entity) Emit(msg engine.Message) {
	msg.From = e.ID
	e.scene.notify(msg)
}

// Destroy ставит сущность на удаление в конце кадра.
func (e *Entity) Destroy() {
	e.scene.DestroyEntity(e.ID)
}

func (e *Entity) Dead() bool { return e.dead }
