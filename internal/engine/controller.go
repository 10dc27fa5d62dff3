package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tower-server/internal/domain"
	"tower-server/internal/systems"
	"tower-server/pkg/dungeon"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ErrNoPlayerTemplate - в определениях нет шаблона с playerAvatar.
var ErrNoPlayerTemplate = errors.New("no player avatar template")

const saveTimeout = 5 * time.Second

// ControllerState - состояние автомата переходов.
type ControllerState uint8

const (
	StateInLevel ControllerState = iota
	StateInTransition
)

func (s ControllerState) String() string {
	if s == StateInTransition {
		return "IN_TRANSITION"
	}
	return "IN_LEVEL"
}

// RegionLoader загружает регион по имени (файл или процедурный).
type RegionLoader interface {
	LoadRegion(name string) (*domain.Region, error)
}

// SessionSaver сохраняет состояние сессии.
type SessionSaver interface {
	Save(ctx context.Context, state *domain.SessionState) error
}

// panTransition - плавный переход между соседними комнатами.
type panTransition struct {
	elapsed    float64
	duration   float64
	playerFrom domain.Vec2
	playerTo   domain.Vec2
	entry      domain.Position
	offset     domain.Vec2
	oldAnchor  domain.EntityID
	newAnchor  domain.EntityID
}

// Controller - автомат сессии: InLevel <-> InTransition.
// Владеет реестром, движком ходов и пулями; вызывается только из
// одного потока (кадр хоста и доставка сообщений).
type Controller struct {
	cfg    Config
	host   Host
	loader RegionLoader
	saver  SessionSaver
	defs   dungeon.Definitions
	rng    *Random
	timers *Scheduler

	region   *domain.Region
	levelPos domain.Position

	state       *LevelState
	turns       *TurnEngine
	projectiles *Projectiles

	player  *domain.Object
	session *domain.SessionState
	camera  domain.EntityID

	mode     ControllerState
	pan      *panTransition
	waiting  bool
	revision uint64
	journal  *Journal

	onAccepted func(action domain.ActionType, dir domain.Direction)

	log *logrus.Entry
}

// NewController собирает контроллер. Поток случайных чисел
// восстанавливается из session (Seed + Draws).
func NewController(cfg Config, host Host, loader RegionLoader, saver SessionSaver, defs dungeon.Definitions, session *domain.SessionState) *Controller {
	c := &Controller{
		cfg:     cfg,
		host:    host,
		loader:  loader,
		saver:   saver,
		defs:    defs,
		rng:     RestoreRandom(session.Seed, session.Draws),
		timers:  NewScheduler(),
		session: session,
		journal: NewJournal(journalCapacity),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "controller",
			"session":   session.ID,
		}),
	}
	c.state = NewLevelState(host, defs)
	c.projectiles = NewProjectiles(host, c.state, cfg.BulletSpeed)
	c.turns = NewTurnEngine(c.state, host, c.projectiles)
	c.projectiles.SetHitHandler(c.ProcessRealTimeEvent)
	return c
}

// OnAccepted - колбэк на каждую принятую команду игрока (запись реплея).
func (c *Controller) OnAccepted(fn func(action domain.ActionType, dir domain.Direction)) {
	c.onAccepted = fn
}

// Start загружает регион из сохранения (или стартовый) и ставит игрока.
// Ошибка здесь фатальна для сессии.
func (c *Controller) Start() error {
	portal := c.session.Portal
	if portal.Region == "" {
		portal = c.cfg.StartPortal()
	}

	region, err := c.loader.LoadRegion(portal.Region)
	if err != nil {
		return fmt.Errorf("load start region %q: %w", portal.Region, err)
	}

	c.camera = c.host.CreateEntity(EntitySpec{Kind: domain.EntityKindCamera, Name: "camera"})

	player, err := c.spawnPlayer(false)
	if err != nil {
		return err
	}
	c.player = player

	if err := c.enterRegion(region, portal); err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"region": region.Name,
		"room":   portal.Level,
		"tile":   portal.Tile,
	}).Info("Session started")
	return nil
}

// spawnPlayer создаёт игрока из сохранённого снимка или из шаблона.
func (c *Controller) spawnPlayer(fullHealth bool) (*domain.Object, error) {
	def, ok := c.defs.Player()
	if !ok {
		return nil, ErrNoPlayerTemplate
	}

	var obj *domain.Object
	if c.session.Player != nil {
		snap := *c.session.Player
		obj = &snap
	} else {
		obj = def.Instantiate(domain.Position{}, domain.DirDown)
	}
	if fullHealth || obj.Health <= 0 {
		obj.Health = obj.MaxHealth
	}

	obj.Entity = c.host.CreateEntity(EntitySpec{
		Kind:    domain.EntityKindObject,
		Name:    obj.Name,
		Pos:     obj.Pos,
		Facing:  obj.Facing,
		Mesh:    def.Graphics.Mesh,
		Texture: def.Graphics.Texture,
	})
	return obj, nil
}

// enterRegion активирует комнату портала. Всё проверяется до мутаций:
// при ошибке контроллер остаётся в прежнем регионе.
func (c *Controller) enterRegion(region *domain.Region, portal domain.Portal) error {
	level, ok := region.LevelAt(portal.Level)
	if !ok {
		return fmt.Errorf("region %q has no level at %v", region.Name, portal.Level)
	}
	tile, ok := level.TileAt(portal.Tile)
	if !ok || !tile.Walkable {
		return fmt.Errorf("region %q: portal tile %v is not walkable", region.Name, portal.Tile)
	}

	old := c.region
	c.region = region
	c.levelPos = portal.Level
	c.activateLevel(level, portal.Tile)

	if old != nil && old != region {
		c.destroyRegion(old)
	}
	c.session.Portal = portal
	c.revision++
	return nil
}

// destroyRegion удаляет визуальные якоря всех комнат старого региона.
func (c *Controller) destroyRegion(r *domain.Region) {
	r.Each(func(_ domain.Position, l *domain.Level) {
		if l.Initialized() {
			c.host.DestroyEntity(l.Anchor())
		}
	})
	c.log.WithField("region", r.Name).Debug("Previous region released")
}

func (c *Controller) roomIndex(p domain.Position) int16 {
	return int16(p.X + c.region.Width*p.Y)
}

// activateLevel пересоздаёт реестр для комнаты и ставит игрока в клетку.
func (c *Controller) activateLevel(level *domain.Level, playerCell domain.Position) {
	c.projectiles.Clear()
	c.state.Detach(c.player)
	if c.state.Level() != nil {
		c.state.Clear()
	}

	room := c.roomIndex(c.levelPos)
	if !level.Initialized() {
		anchor := c.host.CreateEntity(EntitySpec{
			Kind: domain.EntityKindLevel,
			Room: room,
			Name: fmt.Sprintf("level_%d_%d", c.levelPos.X, c.levelPos.Y),
			Mesh: "level.obj",
		})
		if err := level.Initialize(anchor); err != nil {
			c.log.WithError(err).Error("Level anchor initialization failed")
		}
	}
	c.host.Send(level.Anchor(), Message{Kind: MsgLevelOffset, Value: 1})

	c.state.Activate(level, room)
	c.player.Pos = playerCell.Vec()
	if !c.state.AddObject(c.player) {
		c.log.WithField("cell", playerCell).Error("Player could not be placed")
	}
	c.host.Send(c.player.Entity, Message{Kind: MsgSetPosition, Pos: c.player.Pos})
	c.host.Send(c.camera, Message{Kind: MsgSetPosition})

	c.state.Populate(c.rng)
}

// --- Ввод игрока ---

// TryMove - ход игрока. false: ввод отброшен (переход, ожидание анимации, нет игрока).
func (c *Controller) TryMove(dir domain.Direction) bool {
	return c.playerCommand(domain.ActionMove, dir, domain.TryMove)
}

// TryShoot - выстрел игрока.
func (c *Controller) TryShoot(dir domain.Direction) bool {
	return c.playerCommand(domain.ActionShoot, dir, domain.TryShoot)
}

func (c *Controller) playerCommand(action domain.ActionType, dir domain.Direction, build func(*domain.Object, domain.Direction) domain.Command) bool {
	inputLog := c.log.WithFields(logrus.Fields{"action": action, "dir": dir})

	if c.mode != StateInLevel || c.waiting {
		inputLog.WithFields(logrus.Fields{"state": c.mode, "waiting": c.waiting}).Debug("Input dropped")
		return false
	}
	if dir == domain.DirNone || c.player == nil {
		return false
	}
	cell := c.player.Cell()
	if c.state.ObjectAt(cell.X, cell.Y) != c.player {
		inputLog.Debug("Player is not in the level, input dropped")
		return false
	}

	if c.onAccepted != nil {
		c.onAccepted(action, dir)
	}
	c.revision++

	events := c.turns.NextTurn([]domain.Command{build(c.player, dir)})
	if c.react(events) {
		return true
	}

	// NPC ходят после того, как хост доиграет анимацию игрока
	if c.turns.Animated(c.player.Entity) {
		c.waiting = true
		return true
	}
	c.runNPCTurn()
	return true
}

// HandleMessage - слушатель сообщений хоста.
func (c *Controller) HandleMessage(msg Message) {
	if msg.Kind != MsgAnimationDone || !c.waiting || c.player == nil || msg.From != c.player.Entity {
		return
	}
	c.waiting = false
	if c.mode == StateInLevel {
		c.runNPCTurn()
	}
}

// runNPCTurn: решения принимаются по одному снимку, затем разрешаются по порядку.
func (c *Controller) runNPCTurn() {
	player := c.state.FindPlayer()

	var cmds []domain.Command
	for _, npc := range c.state.FindAllCharacters() {
		if npc.IsPlayer() {
			continue
		}
		if cmd, ok := systems.DecideNPC(c.state, npc, player, c.rng); ok {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return
	}

	c.revision++
	c.react(c.turns.NextTurn(cmds))
}

// ProcessRealTimeEvent - попадание пули.
func (c *Controller) ProcessRealTimeEvent(hit Hit) {
	if c.mode != StateInLevel {
		return
	}
	c.revision++
	c.react(c.turns.ProcessRealTimeEvent(hit))
}

// react разбирает события хода. true - начался переход.
func (c *Controller) react(events []domain.Event) bool {
	for _, ev := range events {
		c.journal.Record(ev)

		switch ev.Type {
		case domain.EventObjectHurt:
			if ev.Damage > 0 {
				c.host.CreateEntity(EntitySpec{
					Kind:     domain.EntityKindEffect,
					Room:     c.state.Room(),
					Name:     "label",
					Pos:      ev.Object.Pos,
					Text:     fmt.Sprintf("-%d", ev.Damage),
					Lifetime: c.cfg.LabelLifetime,
				})
			}
		case domain.EventObjectKilled:
			if ev.Object.IsPlayer() {
				c.log.WithField("cell", ev.Object.Pos.Cell()).Info("Player died, respawning at last portal")
				c.beginRegionChange(c.session.Portal, true)
				return true
			}
		case domain.EventPlayerLeave:
			if c.beginPan(ev.Object) {
				return true
			}
		case domain.EventPlayerEnterPortal:
			if c.beginPortal(ev.Object) {
				return true
			}
		}
	}
	return false
}

// --- Переходы ---

// beginPan - выход за край комнаты в соседнюю. false: соседа нет или вход закрыт.
func (c *Controller) beginPan(snap domain.Object) bool {
	level := c.state.Level()
	w, h := level.Width(), level.Height()
	target := snap.Pos.Cell()

	dx, dy := 0, 0
	switch {
	case target.X < 0:
		dx = -1
	case target.X >= w:
		dx = 1
	case target.Y < 0:
		dy = -1
	case target.Y >= h:
		dy = 1
	}

	panLog := c.log.WithFields(logrus.Fields{"from": c.levelPos, "dx": dx, "dy": dy})

	next := c.levelPos.Shift(dx, dy)
	newLevel, ok := c.region.LevelAt(next)
	if !ok {
		panLog.Debug("No adjacent level, leave ignored")
		return false
	}

	entry := domain.Position{X: target.X - dx*w, Y: target.Y - dy*h}
	tile, ok := newLevel.TileAt(entry)
	if !ok || !tile.Walkable || tile.Feature == domain.FeatureDoor {
		panLog.WithField("entry", entry).Warn("Entry cell of adjacent level is blocked, transition cancelled")
		return false
	}

	from := c.player.Pos
	oldAnchor := level.Anchor()
	offset := domain.Vec2{X: float64(dx * w), Y: float64(dy * h)}

	c.levelPos = next
	c.activateLevel(newLevel, entry)

	c.pan = &panTransition{
		duration:   c.cfg.TransitionDuration,
		playerFrom: from,
		playerTo:   entry.Vec().Add(offset),
		entry:      entry,
		offset:     offset,
		oldAnchor:  oldAnchor,
		newAnchor:  newLevel.Anchor(),
	}
	c.host.Send(c.pan.newAnchor, Message{Kind: MsgLevelOffset, Pos: offset, Value: 1})
	c.host.Send(c.player.Entity, Message{Kind: MsgSetPosition, Pos: from})

	c.mode = StateInTransition
	c.waiting = false
	c.revision++

	panLog.WithFields(logrus.Fields{"to": next, "entry": entry}).Info("Level transition started")
	return true
}

// beginPortal - игрок встал на лестницу.
func (c *Controller) beginPortal(snap domain.Object) bool {
	tile, ok := c.state.Level().TileAt(snap.Pos.Cell())
	if !ok {
		return false
	}
	portal, ok := c.region.Portal(tile.Portal)
	if !ok {
		c.log.WithFields(logrus.Fields{"portal": tile.Portal, "cell": snap.Pos.Cell()}).Warn("Stairs without a valid portal")
		return false
	}
	c.beginRegionChange(portal, false)
	return true
}

// beginRegionChange - затемнение и отложенная перезагрузка региона.
func (c *Controller) beginRegionChange(portal domain.Portal, respawn bool) {
	c.mode = StateInTransition
	c.waiting = false
	c.pan = nil
	c.projectiles.Clear()
	c.revision++

	c.host.Broadcast(Message{Kind: MsgFade, Duration: c.cfg.FadeDuration})
	c.timers.After(c.cfg.FadeDuration, func() {
		c.completeRegionChange(portal, respawn)
	})

	c.log.WithFields(logrus.Fields{
		"region":  portal.Region,
		"room":    portal.Level,
		"tile":    portal.Tile,
		"respawn": respawn,
	}).Info("Region change started")
}

func (c *Controller) completeRegionChange(portal domain.Portal, respawn bool) {
	defer func() {
		c.mode = StateInLevel
		c.revision++
	}()

	region, err := c.loader.LoadRegion(portal.Region)
	if err != nil && respawn {
		c.log.WithError(err).Error("Saved portal unavailable, falling back to start portal")
		portal = c.cfg.StartPortal()
		region, err = c.loader.LoadRegion(portal.Region)
	}
	if err != nil {
		c.log.WithError(err).WithField("region", portal.Region).Error("Region reload failed")
		return
	}

	if respawn {
		player, err := c.spawnPlayer(true)
		if err != nil {
			c.log.WithError(err).Error("Respawn failed")
			return
		}
		c.player = player
	}

	if err := c.enterRegion(region, portal); err != nil {
		c.log.WithError(err).Error("Region change failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := c.Checkpoint(ctx); err != nil {
		c.log.WithError(err).Warn("Checkpoint after region change failed")
	}
}

// Update - кадр: таймеры и анимация перехода.
func (c *Controller) Update(dt float64) {
	c.timers.Advance(dt)

	if c.pan == nil {
		return
	}
	p := c.pan
	p.elapsed += dt

	t := 1.0
	if p.duration > 0 {
		t = p.elapsed / p.duration
	}
	if t >= 1 {
		c.finishPan()
		return
	}

	k := easeInOutCubic(t)
	c.host.Send(c.player.Entity, Message{Kind: MsgSetPosition, Pos: p.playerFrom.Lerp(p.playerTo, k)})
	c.host.Send(c.camera, Message{Kind: MsgSetPosition, Pos: domain.Vec2{}.Lerp(p.offset, k)})
}

func (c *Controller) finishPan() {
	p := c.pan
	if p.oldAnchor != p.newAnchor {
		c.host.Send(p.oldAnchor, Message{Kind: MsgLevelOffset, Value: 0})
	}
	c.host.Send(p.newAnchor, Message{Kind: MsgLevelOffset, Value: 1})
	c.host.Send(c.player.Entity, Message{Kind: MsgSetPosition, Pos: p.entry.Vec()})
	c.host.Send(c.camera, Message{Kind: MsgSetPosition})

	c.pan = nil
	c.mode = StateInLevel
	c.revision++
	c.log.WithField("room", c.levelPos).Debug("Level transition finished")
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := 2*t - 2
	return 0.5*f*f*f + 1
}

// Checkpoint сохраняет снимок игрока, портал и позицию потока случайных чисел.
func (c *Controller) Checkpoint(ctx context.Context) error {
	if c.player != nil {
		snap := c.player.Snapshot()
		c.session.Player = &snap
	}
	c.session.Draws = c.rng.Draws()
	c.session.UpdatedAt = time.Now()

	if c.saver == nil {
		return nil
	}
	if err := c.saver.Save(ctx, c.session); err != nil {
		return fmt.Errorf("save session %s: %w", c.session.ID, err)
	}
	c.log.WithField("portal", c.session.Portal).Debug("Checkpoint saved")
	return nil
}

// --- Чтение состояния ---

func (c *Controller) State() ControllerState { return c.mode }

func (c *Controller) Waiting() bool { return c.waiting }

func (c *Controller) Revision() uint64 { return c.revision }

func (c *Controller) Player() *domain.Object { return c.player }

func (c *Controller) Region() *domain.Region { return c.region }

func (c *Controller) LevelPosition() domain.Position { return c.levelPos }

func (c *Controller) LevelState() *LevelState { return c.state }

func (c *Controller) Projectiles() *Projectiles { return c.projectiles }

func (c *Controller) Session() *domain.SessionState { return c.session }

func (c *Controller) Journal() *Journal { return c.journal }
