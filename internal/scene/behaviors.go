package scene

import (
	"math"

	"tower-server/internal/domain"
	"tower-server/internal/engine"
)

// --- transform: мгновенная установка позиции и смещения комнаты ---

type transform struct{}

func (transform) Init(e *Entity) {
	e.Pos = e.Spec.Pos
	e.Facing = e.Spec.Facing
	e.Text = e.Spec.Text
	e.Visible = true
}

func (transform) Update(*Entity, float64) {}

func (transform) Accepts(msg engine.Message) bool {
	return msg.Kind == engine.MsgSetPosition || msg.Kind == engine.MsgLevelOffset
}

func (transform) Handle(e *Entity, msg engine.Message) {
	switch msg.Kind {
	case engine.MsgSetPosition:
		e.Pos = msg.Pos
	case engine.MsgLevelOffset:
		e.Offset = msg.Pos
		e.Visible = msg.Value > 0
	}
}

// --- animator: шаг, отскок и выпад объекта ---

type animKind uint8

const (
	animNone animKind = iota
	animMove
	animBounce
)

type animator struct {
	opts Options

	kind     animKind
	from     domain.Vec2
	to       domain.Vec2
	elapsed  float64
	duration float64
}

func (a *animator) Init(*Entity) {}

func (a *animator) Accepts(msg engine.Message) bool {
	switch msg.Kind {
	case engine.MsgMove, engine.MsgBounce, engine.MsgAttack, engine.MsgSetPosition:
		return true
	}
	return false
}

func (a *animator) Handle(e *Entity, msg engine.Message) {
	// Новая анимация стартует из текущей логической точки
	if a.kind == animMove {
		e.Pos = a.to
	} else if a.kind == animBounce {
		e.Pos = a.from
	}

	switch msg.Kind {
	case engine.MsgSetPosition:
		a.kind = animNone
		e.Pos = msg.Pos
		return
	case engine.MsgMove:
		a.start(animMove, e.Pos, msg.Pos)
		if msg.Dir != domain.DirNone {
			e.Facing = msg.Dir
		}
	case engine.MsgBounce:
		dist := msg.Value
		if dist <= 0 {
			dist = a.opts.BounceDistance
		}
		a.start(animBounce, e.Pos, e.Pos.Add(msg.Dir.Vector().Scale(dist)))
	case engine.MsgAttack:
		a.start(animBounce, e.Pos, e.Pos.Add(msg.Dir.Vector().Scale(a.opts.AttackDistance)))
		e.Facing = msg.Dir
	}
}

func (a *animator) start(kind animKind, from, to domain.Vec2) {
	a.kind = kind
	a.from = from
	a.to = to
	a.elapsed = 0
	a.duration = a.opts.MoveDuration
}

func (a *animator) Update(e *Entity, dt float64) {
	if a.kind == animNone {
		return
	}
	a.elapsed += dt

	t := 1.0
	if a.duration > 0 {
		t = math.Min(a.elapsed/a.duration, 1)
	}

	switch a.kind {
	case animMove:
		e.Pos = a.from.Lerp(a.to, t)
	case animBounce:
		// Туда и обратно: пик в середине
		k := 1 - math.Abs(2*t-1)
		e.Pos = a.from.Lerp(a.to, k)
	}

	if t >= 1 {
		if a.kind == animBounce {
			e.Pos = a.from
		}
		a.kind = animNone
		e.Emit(engine.Message{Kind: engine.MsgAnimationDone})
	}
}

// --- hurt: вспышка получения урона ---

type hurtFlash struct {
	duration float64
}

func (h *hurtFlash) Init(*Entity) {}

func (h *hurtFlash) Accepts(msg engine.Message) bool { return msg.Kind == engine.MsgHurt }

func (h *hurtFlash) Handle(e *Entity, _ engine.Message) {
	e.Flash = h.duration
}

func (h *hurtFlash) Update(e *Entity, dt float64) {
	if e.Flash > 0 {
		e.Flash = math.Max(0, e.Flash-dt)
	}
}

// --- featureView: дверь, кнопка, шипы, пол ---

type featureView struct{}

func (featureView) Init(*Entity) {}

func (featureView) Update(*Entity, float64) {}

func (featureView) Accepts(msg engine.Message) bool { return msg.Kind == engine.MsgFeatureState }

func (featureView) Handle(e *Entity, msg engine.Message) {
	e.State = msg.Value
}

// --- bullet: движение в реальном времени и проверка столкновений ---

// Максимальный шаг пули за одну проверку (в клетках).
const bulletSubstep = 0.5

type bullet struct {
	phys *engine.PhysicsSpec
	done bool
}

func (b *bullet) Init(e *Entity) {
	b.phys = e.Spec.Physics
}

func (b *bullet) Accepts(engine.Message) bool { return false }

func (b *bullet) Handle(*Entity, engine.Message) {}

func (b *bullet) Update(e *Entity, dt float64) {
	if b.done || b.phys == nil {
		return
	}
	v := b.phys.Velocity
	dist := math.Hypot(v.X, v.Y) * dt
	steps := int(math.Ceil(dist / bulletSubstep))
	if steps < 1 {
		steps = 1
	}
	step := v.Scale(dt / float64(steps))

	for i := 0; i < steps; i++ {
		e.Pos = e.Pos.Add(step)
		res := b.phys.Probe(e.Pos)
		if !res.Hit && !res.Expired {
			continue
		}
		b.done = true
		if b.phys.OnHit != nil {
			b.phys.OnHit(res)
		}
		e.Destroy()
		return
	}
}

// --- lifetime: самоуничтожение по таймеру ---

type lifetime struct {
	remaining float64
}

func (l *lifetime) Init(e *Entity) {
	l.remaining = e.Spec.Lifetime
}

func (l *lifetime) Accepts(engine.Message) bool { return false }

func (l *lifetime) Handle(*Entity, engine.Message) {}

func (l *lifetime) Update(e *Entity, dt float64) {
	l.remaining -= dt
	if l.remaining <= 0 {
		e.Destroy()
	}
}

// --- label: всплывающий текст ---

type label struct {
	rise float64
}

func (l *label) Init(*Entity) {}

func (l *label) Accepts(engine.Message) bool { return false }

func (l *label) Handle(*Entity, engine.Message) {}

func (l *label) Update(e *Entity, dt float64) {
	e.Pos.Y -= l.rise * dt
}
