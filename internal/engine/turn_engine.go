package engine

import (
	"tower-server/internal/domain"
	"tower-server/internal/systems"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

// ProjectileSpawner - кто выпускает пули по команде shoot.
type ProjectileSpawner interface {
	Spawn(shooter *domain.Object, dir domain.Direction) domain.EntityID
}

// TurnEngine разрешает пакет команд одного хода против текущего реестра.
// Буфер событий общий для NextTurn и ProcessRealTimeEvent и живёт до
// следующего вызова любого из них.
type TurnEngine struct {
	state   *LevelState
	host    Host
	shooter ProjectileSpawner

	events   []domain.Event
	animated mapset.Set[domain.EntityID]
	busy     bool

	log *logrus.Entry
}

func NewTurnEngine(state *LevelState, host Host, shooter ProjectileSpawner) *TurnEngine {
	return &TurnEngine{
		state:    state,
		host:     host,
		shooter:  shooter,
		animated: mapset.New[domain.EntityID](),
		log:      logger.Log.WithField("component", "turn_engine"),
	}
}

// NextTurn разрешает команды строго по порядку списка.
func (e *TurnEngine) NextTurn(cmds []domain.Command) []domain.Event {
	if !e.begin("next_turn") {
		return nil
	}
	defer e.end()

	for _, cmd := range cmds {
		switch cmd.Kind {
		case domain.CommandMove:
			e.resolveMove(cmd)
		case domain.CommandShoot:
			e.resolveShoot(cmd)
		default:
			e.log.WithField("kind", cmd.Kind).Warn("Unknown command kind, skipped")
		}
	}
	return e.events
}

// ProcessRealTimeEvent - синтетическая атака без атакующего (попадание пули).
func (e *TurnEngine) ProcessRealTimeEvent(hit Hit) []domain.Event {
	if !e.begin("real_time_event") {
		return nil
	}
	defer e.end()

	if target := e.state.ObjectAt(hit.Cell.X, hit.Cell.Y); target != nil {
		e.attack(nil, target, hit.Dir)
	}
	return e.events
}

func (e *TurnEngine) begin(op string) bool {
	if e.busy {
		e.log.WithField("op", op).Error("Reentrant turn resolution rejected")
		return false
	}
	e.busy = true
	e.events = e.events[:0]
	e.animated = mapset.New[domain.EntityID]()
	return true
}

func (e *TurnEngine) end() {
	e.busy = false
}

// Events - события последнего хода.
func (e *TurnEngine) Events() []domain.Event {
	return e.events
}

// Animated - получила ли сущность анимацию в последнем ходе.
func (e *TurnEngine) Animated(id domain.EntityID) bool {
	return e.animated.Has(id)
}

func (e *TurnEngine) emit(t domain.EventType, obj *domain.Object, damage int) {
	e.events = append(e.events, domain.Event{Type: t, Object: obj.Snapshot(), Damage: damage})
}

func (e *TurnEngine) animate(obj *domain.Object, msg Message) {
	if obj.Entity == domain.NilEntity {
		return
	}
	e.host.Send(obj.Entity, msg)
	e.animated.Put(obj.Entity)
}

// valid: актор ещё стоит там, где его видит реестр.
func (e *TurnEngine) valid(cmd domain.Command) bool {
	if cmd.Actor == nil {
		e.log.WithField("kind", cmd.Kind).Error("Command without actor")
		return false
	}
	cell := cmd.Actor.Cell()
	if e.state.ObjectAt(cell.X, cell.Y) != cmd.Actor {
		e.log.WithFields(logrus.Fields{
			"actor": cmd.Actor.Name,
			"cell":  cell,
			"kind":  cmd.Kind,
		}).Error("Actor is not at its expected cell, command skipped")
		return false
	}
	return true
}

func (e *TurnEngine) resolveMove(cmd domain.Command) {
	if !e.valid(cmd) {
		return
	}
	actor := cmd.Actor
	res := systems.CalculateMove(e.state, actor, cmd.Dir)

	switch {
	case res.OutOfBounds:
		if actor.IsPlayer() {
			snap := actor.Snapshot()
			snap.Pos = res.Target.Vec()
			e.events = append(e.events, domain.Event{Type: domain.EventPlayerLeave, Object: snap})
		}
		e.animate(actor, Message{Kind: MsgBounce, Dir: cmd.Dir})
	case res.BlockedBy != nil:
		e.attack(actor, res.BlockedBy, cmd.Dir)
	case res.HasMoved:
		e.relocate(actor, res.Target, cmd.Dir)
	default:
		e.animate(actor, Message{Kind: MsgBounce, Dir: cmd.Dir})
	}
}

// relocate - шаг в свободную клетку со всеми триггерами.
func (e *TurnEngine) relocate(obj *domain.Object, to domain.Position, dir domain.Direction) {
	from := obj.Cell()
	if !e.state.MoveObject(obj, to) {
		return
	}
	if !obj.IsBoulder() {
		obj.Facing = dir
	}
	e.animate(obj, Message{Kind: MsgMove, Pos: to.Vec(), Dir: obj.Facing})

	e.onLeave(obj, from)
	e.onEnter(obj, to)

	// Объект мог погибнуть на шипах
	if e.state.ObjectAt(to.X, to.Y) != obj {
		return
	}
	if obj.IsPlayer() {
		if tile, ok := e.state.Level().TileAt(to); ok && tile.IsStairs {
			e.emit(domain.EventPlayerEnterPortal, obj, 0)
		}
	}
}

// attack: толчок цели (если атакующий умеет толкать), урон, реакция атакующего.
// Заблокированный толчок урон не отменяет.
func (e *TurnEngine) attack(attacker, target *domain.Object, dir domain.Direction) {
	origin := target.Cell()
	pushed := false

	if attacker != nil && attacker.Flags.Has(domain.FlagCanPush) {
		if dest, ok := systems.PushDestination(e.state, target, dir); ok && e.state.MoveObject(target, dest) {
			e.animate(target, Message{Kind: MsgMove, Pos: dest.Vec(), Dir: target.Facing})
			e.onLeave(target, origin)
			e.onEnter(target, dest)
			pushed = true
		}
	}

	// Цель могла уже погибнуть на шипах после толчка
	cell := target.Cell()
	if e.state.ObjectAt(cell.X, cell.Y) == target {
		e.damage(target, systems.DamageFor(target))
	}

	if attacker == nil {
		return
	}
	if pushed && target.IsBoulder() {
		e.relocate(attacker, origin, dir)
		return
	}
	if attacker.Flags.Has(domain.FlagCanRotate) {
		attacker.Facing = dir
	}
	e.animate(attacker, Message{Kind: MsgAttack, Dir: dir})
}

func (e *TurnEngine) damage(target *domain.Object, amount int) {
	if target.TakeDamage(amount) <= 0 {
		snap := target.Snapshot()
		e.state.RemoveObject(target)
		e.events = append(e.events, domain.Event{Type: domain.EventObjectKilled, Object: snap, Damage: amount})
		e.log.WithFields(logrus.Fields{"object": target.Name, "cell": snap.Pos.Cell()}).Debug("Object killed")
		return
	}
	e.emit(domain.EventObjectHurt, target, amount)
	if !target.IsBoulder() && target.Entity != domain.NilEntity {
		e.host.Send(target.Entity, Message{Kind: MsgHurt})
	}
}

func (e *TurnEngine) resolveShoot(cmd domain.Command) {
	if !e.valid(cmd) {
		return
	}
	actor := cmd.Actor
	if !actor.Flags.Has(domain.FlagCanShoot) || actor.Ammo <= 0 {
		e.log.WithFields(logrus.Fields{"actor": actor.Name, "ammo": actor.Ammo}).Debug("Cannot shoot, skipped")
		return
	}

	actor.Ammo--
	actor.Facing = cmd.Dir
	if e.shooter != nil {
		e.shooter.Spawn(actor, cmd.Dir)
	}
	e.animate(actor, Message{Kind: MsgBounce, Dir: cmd.Dir.Opposite(), Value: domain.RecoilDistance})
}

// onEnter - триггеры клетки, в которую вошёл объект.
func (e *TurnEngine) onEnter(obj *domain.Object, cell domain.Position) {
	f := e.state.FeatureAt(cell.X, cell.Y)
	if f == nil {
		return
	}
	switch f.Kind {
	case domain.FeatureButton:
		e.press(f)
	case domain.FeatureSpikes:
		if f.Active && !obj.IsBoulder() {
			e.damage(obj, domain.SpikeDamage)
		}
	}
}

// onLeave - триггеры клетки, которую объект покинул.
func (e *TurnEngine) onLeave(obj *domain.Object, cell domain.Position) {
	f := e.state.FeatureAt(cell.X, cell.Y)
	if f == nil {
		return
	}
	switch f.Kind {
	case domain.FeatureButton:
		e.press(f)
	case domain.FeatureBreakableFloor:
		if f.Active {
			f.Active = false
			e.sendFeature(f)
		}
	case domain.FeatureDoor:
		// Проём освободился: дверь догоняет свою кнопку
		idx := e.state.Level().Index(cell.X, cell.Y)
		for _, b := range e.state.Features() {
			if b.Kind == domain.FeatureButton && b.Target == idx {
				e.syncTarget(b)
				return
			}
		}
	}
}

// press переключает кнопку, связанный элемент следует за ней.
func (e *TurnEngine) press(button *domain.Feature) {
	button.Toggle()
	e.sendFeature(button)
	e.syncTarget(button)
}

// syncTarget: кнопка нажата - цель неактивна (дверь открыта, шипы убраны).
// Дверь не закрывается на объекте в проёме.
func (e *TurnEngine) syncTarget(button *domain.Feature) {
	if button.Target == domain.NoLink {
		return
	}
	cell := e.state.Level().CellOf(button.Target)
	target := e.state.FeatureAt(cell.X, cell.Y)
	if target == nil {
		e.log.WithFields(logrus.Fields{"button": button.Cell, "target": cell}).Warn("Button target has no feature")
		return
	}

	want := !button.Active
	if target.Active == want {
		return
	}
	if target.Kind == domain.FeatureDoor && want && e.state.ObjectAt(cell.X, cell.Y) != nil {
		e.log.WithField("door", cell).Debug("Door held open by occupant")
		return
	}
	target.Active = want
	e.sendFeature(target)
}

func (e *TurnEngine) sendFeature(f *domain.Feature) {
	if f.Entity != domain.NilEntity {
		e.host.Send(f.Entity, Message{Kind: MsgFeatureState, Value: boolValue(f.Active)})
	}
}
