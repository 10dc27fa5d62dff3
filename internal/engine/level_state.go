package engine

import (
	"tower-server/internal/domain"
	"tower-server/internal/systems"
	"tower-server/pkg/dungeon"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// LevelState - реестр активной комнаты: какие объекты и элементы
// занимают какие клетки. Слоты индексируются x + width*y.
// Сбрасывается при каждой активации комнаты.
type LevelState struct {
	host Host
	defs dungeon.Definitions

	level    *domain.Level
	room     int16
	objects  []*domain.Object
	features []*domain.Feature

	log *logrus.Entry
}

func NewLevelState(host Host, defs dungeon.Definitions) *LevelState {
	return &LevelState{
		host: host,
		defs: defs,
		log:  logger.Log.WithField("component", "level_state"),
	}
}

// Activate делает комнату текущей. Реестр должен быть пуст (см. Clear).
func (s *LevelState) Activate(level *domain.Level, room int16) {
	n := level.Width() * level.Height()
	s.level = level
	s.room = room
	s.objects = make([]*domain.Object, n)
	s.features = make([]*domain.Feature, n)
}

func (s *LevelState) Level() *domain.Level { return s.level }

func (s *LevelState) Room() int16 { return s.room }

func (s *LevelState) slot(x, y int) (int, bool) {
	if s.level == nil || !s.level.InBounds(x, y) {
		return 0, false
	}
	return s.level.Index(x, y), true
}

// ObjectAt возвращает объект в клетке или nil (пусто или вне сетки).
func (s *LevelState) ObjectAt(x, y int) *domain.Object {
	idx, ok := s.slot(x, y)
	if !ok {
		return nil
	}
	return s.objects[idx]
}

// ObjectAtPosition округляет позицию до ближайшей клетки.
func (s *LevelState) ObjectAtPosition(v domain.Vec2) *domain.Object {
	c := v.Cell()
	return s.ObjectAt(c.X, c.Y)
}

func (s *LevelState) FeatureAt(x, y int) *domain.Feature {
	idx, ok := s.slot(x, y)
	if !ok {
		return nil
	}
	return s.features[idx]
}

// IsCellFree - клетка проходима и никем не занята.
func (s *LevelState) IsCellFree(p domain.Position) bool {
	return systems.IsCellFree(s, p)
}

// AddObject кладёт объект в его клетку. Занятая клетка - нарушение
// инварианта: логируем и ничего не меняем.
func (s *LevelState) AddObject(obj *domain.Object) bool {
	cell := obj.Cell()
	idx, ok := s.slot(cell.X, cell.Y)
	if !ok {
		s.log.WithFields(logrus.Fields{"object": obj.Name, "cell": cell}).Error("Cannot add object outside of the level")
		return false
	}
	if other := s.objects[idx]; other != nil {
		s.log.WithFields(logrus.Fields{
			"object":   obj.Name,
			"occupant": other.Name,
			"cell":     cell,
		}).Error("Cannot add object: cell is occupied")
		return false
	}
	s.objects[idx] = obj
	return true
}

// Detach убирает объект из слота, не трогая его сущность.
// Так игрок переживает пересоздание реестра.
func (s *LevelState) Detach(obj *domain.Object) bool {
	if obj == nil {
		return false
	}
	cell := obj.Cell()
	idx, ok := s.slot(cell.X, cell.Y)
	if !ok || s.objects[idx] != obj {
		return false
	}
	s.objects[idx] = nil
	return true
}

// RemoveObject освобождает слот и удаляет сущность объекта.
func (s *LevelState) RemoveObject(obj *domain.Object) {
	if !s.Detach(obj) {
		s.log.WithFields(logrus.Fields{"object": obj.Name, "cell": obj.Cell()}).Error("Remove: object is not at its expected cell")
		return
	}
	if obj.Entity != domain.NilEntity {
		s.host.DestroyEntity(obj.Entity)
	}
}

// MoveObject переносит объект в клетку to. Позиция объекта меняется
// только если слот свободен.
func (s *LevelState) MoveObject(obj *domain.Object, to domain.Position) bool {
	from := obj.Cell()
	src, ok := s.slot(from.X, from.Y)
	if !ok || s.objects[src] != obj {
		s.log.WithFields(logrus.Fields{"object": obj.Name, "cell": from}).Error("Move: object is not at its expected cell")
		return false
	}
	dst, ok := s.slot(to.X, to.Y)
	if !ok || s.objects[dst] != nil {
		s.log.WithFields(logrus.Fields{"object": obj.Name, "to": to}).Error("Move: destination is unavailable")
		return false
	}
	s.objects[src] = nil
	s.objects[dst] = obj
	obj.Pos = to.Vec()
	return true
}

// FindPlayer - линейный поиск аватара игрока.
func (s *LevelState) FindPlayer() *domain.Object {
	for _, obj := range s.objects {
		if obj != nil && obj.IsPlayer() {
			return obj
		}
	}
	return nil
}

// FindAllCharacters возвращает персонажей (включая игрока) в порядке обхода сетки.
func (s *LevelState) FindAllCharacters() []*domain.Object {
	var out []*domain.Object
	for _, obj := range s.objects {
		if obj != nil && obj.IsCharacter() {
			out = append(out, obj)
		}
	}
	return out
}

// Objects - все живые объекты в порядке обхода сетки.
func (s *LevelState) Objects() []*domain.Object {
	var out []*domain.Object
	for _, obj := range s.objects {
		if obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

func (s *LevelState) Features() []*domain.Feature {
	var out []*domain.Feature
	for _, f := range s.features {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Spawn создаёт объект по имени шаблона вместе с сущностью хоста.
// Неизвестный шаблон или занятая клетка - nil. rng нужен только
// при dir == DirNone (случайный взгляд).
func (s *LevelState) Spawn(name string, pos domain.Position, dir domain.Direction, rng systems.RandomSource) *domain.Object {
	def, ok := s.defs.Lookup(name)
	if !ok {
		s.log.WithFields(logrus.Fields{"template": name, "cell": pos}).Warn("Unknown object template, spawn skipped")
		return nil
	}
	if dir == domain.DirNone {
		dir = domain.AllDirections[rng.Intn(len(domain.AllDirections))]
	}

	obj := def.Instantiate(pos, dir)
	if !s.AddObject(obj) {
		return nil
	}
	obj.Entity = s.host.CreateEntity(EntitySpec{
		Kind:    domain.EntityKindObject,
		Room:    s.room,
		Name:    obj.Name,
		Pos:     obj.Pos,
		Facing:  obj.Facing,
		Mesh:    def.Graphics.Mesh,
		Texture: def.Graphics.Texture,
	})
	return obj
}

// Populate заселяет комнату по таблице тайлов: один бросок на каждый тайл,
// затем элементы по ссылкам тайлов.
func (s *LevelState) Populate(rng systems.RandomSource) {
	tiles := s.level.Tiles()
	spawned := 0

	// 1. Объекты
	for i, tile := range tiles {
		roll := rng.Float64()
		if tile.SpawnObject == "" || roll >= tile.SpawnProbability {
			continue
		}
		cell := s.level.CellOf(i)
		if s.objects[i] != nil {
			s.log.WithFields(logrus.Fields{"template": tile.SpawnObject, "cell": cell}).Debug("Spawn cell already occupied")
			continue
		}
		if s.Spawn(tile.SpawnObject, cell, domain.DirNone, rng) != nil {
			spawned++
		}
	}

	// 2. Элементы
	for i, tile := range tiles {
		if tile.Feature == domain.FeatureNone {
			continue
		}
		f := domain.NewFeature(tile.Feature, s.level.CellOf(i), tile.FeatureTarget)
		f.Entity = s.host.CreateEntity(EntitySpec{
			Kind: domain.EntityKindFeature,
			Room: s.room,
			Name: f.Kind.String(),
			Pos:  f.Cell.Vec(),
			Mesh: f.Kind.String() + ".obj",
		})
		s.host.Send(f.Entity, Message{Kind: MsgFeatureState, Value: boolValue(f.Active)})
		s.features[i] = f
	}

	s.log.WithFields(logrus.Fields{
		"room":     s.room,
		"objects":  spawned,
		"features": len(s.Features()),
	}).Debug("Level populated")
}

// Clear освобождает все слоты и удаляет сущности (в конце кадра).
func (s *LevelState) Clear() {
	for i, obj := range s.objects {
		if obj == nil {
			continue
		}
		if obj.Entity != domain.NilEntity {
			s.host.DestroyEntity(obj.Entity)
		}
		s.objects[i] = nil
	}
	for i, f := range s.features {
		if f == nil {
			continue
		}
		if f.Entity != domain.NilEntity {
			s.host.DestroyEntity(f.Entity)
		}
		s.features[i] = nil
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
