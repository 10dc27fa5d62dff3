package scene

import (
	"math"
	"sort"

	"tower-server/internal/domain"
	"tower-server/internal/engine"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Options - визуальные параметры сцены.
type Options struct {
	MoveDuration   float64 // длительность шага/отскока
	BounceDistance float64 // амплитуда отскока по умолчанию
	AttackDistance float64 // амплитуда выпада
	HurtFlash      float64 // длительность вспышки урона
	LabelRise      float64 // скорость всплытия надписи (клеток/с)
}

func DefaultOptions() Options {
	return Options{
		MoveDuration:   0.15,
		BounceDistance: 0.3,
		AttackDistance: 0.4,
		HurtFlash:      0.2,
		LabelRise:      1.0,
	}
}

// Visual - снимок визуальной сущности для отрисовки.
type Visual struct {
	ID      domain.EntityID
	Kind    domain.EntityKind
	Name    string
	Pos     domain.Vec2
	Facing  domain.Direction
	Offset  domain.Vec2
	Visible bool
	State   float64
	Flash   bool
	Text    string
}

// Scene - встроенный хост: хранит сущности, тикает их поведения и
// доставляет сообщения. Создание и удаление во время тика применяются
// в конце кадра.
type Scene struct {
	opts Options

	entities map[domain.EntityID]*Entity
	order    []*Entity // порядок обновления (порядок создания)
	spawned  []*Entity
	doomed   []domain.EntityID

	serial   uint64
	updating bool
	listener func(engine.Message)

	fadeLeft  float64
	fadeTotal float64

	log *logrus.Entry
}

func New(opts Options) *Scene {
	return &Scene{
		opts:     opts,
		entities: make(map[domain.EntityID]*Entity),
		log:      logger.Log.WithFields(logrus.Fields{"component": "scene"}),
	}
}

// SetListener - куда уходят сообщения от сущностей (AnimationDone).
func (s *Scene) SetListener(fn func(engine.Message)) {
	s.listener = fn
}

func (s *Scene) notify(msg engine.Message) {
	if s.listener != nil {
		s.listener(msg)
	}
}

func (s *Scene) CreateEntity(spec engine.EntitySpec) domain.EntityID {
	s.serial++
	id := domain.PackEntityID(spec.Kind, spec.Room, s.serial)

	e := &Entity{ID: id, Spec: spec, scene: s}
	e.behaviors = s.behaviorsFor(spec)
	e.init()

	s.entities[id] = e
	if s.updating {
		s.spawned = append(s.spawned, e)
	} else {
		s.order = append(s.order, e)
	}

	s.log.WithFields(logrus.Fields{"id": id.String(), "name": spec.Name}).Trace("Entity created")
	return id
}

func (s *Scene) behaviorsFor(spec engine.EntitySpec) []Behavior {
	list := []Behavior{transform{}}

	switch spec.Kind {
	case domain.EntityKindObject:
		list = append(list, &animator{opts: s.opts}, &hurtFlash{duration: s.opts.HurtFlash})
	case domain.EntityKindFeature:
		list = append(list, featureView{})
	case domain.EntityKindBullet:
		list = append(list, &bullet{})
	case domain.EntityKindEffect:
		if spec.Text != "" {
			list = append(list, &label{rise: s.opts.LabelRise})
		}
	}

	if spec.Lifetime > 0 {
		list = append(list, &lifetime{})
	}
	return list
}

// DestroyEntity помечает сущность; из сцены она уходит в конце кадра.
// Сообщения мёртвой сущности больше не доставляются.
func (s *Scene) DestroyEntity(id domain.EntityID) {
	e, ok := s.entities[id]
	if !ok || e.dead {
		return
	}
	e.dead = true
	s.doomed = append(s.doomed, id)
}

func (s *Scene) Send(id domain.EntityID, msg engine.Message) {
	e, ok := s.entities[id]
	if !ok || e.dead {
		s.log.WithFields(logrus.Fields{"id": id.String(), "message": msg.Kind.String()}).Trace("Message to missing entity dropped")
		return
	}
	e.deliver(msg)
}

func (s *Scene) Broadcast(msg engine.Message) {
	if msg.Kind == engine.MsgFade {
		s.fadeLeft = msg.Duration
		s.fadeTotal = msg.Duration
	}
	for _, e := range s.live() {
		e.deliver(msg)
	}
}

func (s *Scene) Position(id domain.EntityID) (domain.Vec2, bool) {
	e, ok := s.entities[id]
	if !ok || e.dead {
		return domain.Vec2{}, false
	}
	return e.Pos, true
}

// Update - один кадр: тик всех сущностей, затем применение
// отложенных созданий и удалений.
func (s *Scene) Update(dt float64) {
	s.updating = true
	for _, e := range s.order {
		if !e.dead {
			e.update(dt)
		}
	}
	s.updating = false

	if s.fadeLeft > 0 {
		s.fadeLeft = math.Max(0, s.fadeLeft-dt)
	}
	s.flush()
}

func (s *Scene) flush() {
	s.order = append(s.order, s.spawned...)
	s.spawned = s.spawned[:0]

	if len(s.doomed) == 0 {
		return
	}
	for _, id := range s.doomed {
		delete(s.entities, id)
	}
	s.doomed = s.doomed[:0]

	kept := s.order[:0]
	for _, e := range s.order {
		if !e.dead {
			kept = append(kept, e)
		}
	}
	s.order = kept
}

func (s *Scene) live() []*Entity {
	out := make([]*Entity, 0, len(s.order)+len(s.spawned))
	for _, e := range s.order {
		if !e.dead {
			out = append(out, e)
		}
	}
	for _, e := range s.spawned {
		if !e.dead {
			out = append(out, e)
		}
	}
	return out
}

// Count - число живых сущностей.
func (s *Scene) Count() int {
	return len(s.live())
}

// Fade - доля оставшегося затемнения (0 - экран чист).
func (s *Scene) Fade() float64 {
	if s.fadeTotal <= 0 {
		return 0
	}
	return s.fadeLeft / s.fadeTotal
}

// Visuals возвращает снимок живых сущностей, отсортированный по ID.
func (s *Scene) Visuals() []Visual {
	list := s.live()
	out := make([]Visual, 0, len(list))
	for _, e := range list {
		out = append(out, Visual{
			ID:      e.ID,
			Kind:    e.ID.Kind(),
			Name:    e.Spec.Name,
			Pos:     e.Pos,
			Facing:  e.Facing,
			Offset:  e.Offset,
			Visible: e.Visible,
			State:   e.State,
			Flash:   e.Flash > 0,
			Text:    e.Text,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
