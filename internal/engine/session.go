package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tower-server/internal/domain"
	"tower-server/internal/engine/handlers"
	"tower-server/internal/engine/handlers/actions"
	"tower-server/pkg/api"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ErrUnknownAction - клиент прислал действие без хендлера.
var ErrUnknownAction = errors.New("unknown action")

// Publisher - куда уходят снимки (хаб подписчиков).
type Publisher interface {
	Broadcast(msg api.ServerResponse)
}

// Session - один запущенный мир: хост, контроллер и кадровый цикл.
// Всё состояние мутируется только из горутины Run (или из вызывающего
// Step/Play, если цикл не запущен).
type Session struct {
	ID string

	cfg        Config
	world      World
	controller *Controller
	publisher  Publisher

	handlers map[domain.ActionType]handlers.HandlerFunc
	commands chan api.ClientCommand // Команды от клиентов

	frame     int
	published uint64

	mu     sync.RWMutex
	last   *api.ServerResponse
	replay *domain.ReplaySession // Лента принятых команд

	log *logrus.Entry
}

func NewSession(cfg Config, world World, controller *Controller, publisher Publisher) *Session {
	s := &Session{
		ID:         controller.Session().ID,
		cfg:        cfg,
		world:      world,
		controller: controller,
		publisher:  publisher,
		commands:   make(chan api.ClientCommand, 100),
		published:  ^uint64(0),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "session",
			"session":   controller.Session().ID,
		}),
	}

	s.handlers = map[domain.ActionType]handlers.HandlerFunc{
		domain.ActionInit:       handlers.WithEmptyPayload(actions.HandleInit),
		domain.ActionMove:       handlers.WithPayload(actions.HandleMove),
		domain.ActionShoot:      handlers.WithPayload(actions.HandleShoot),
		domain.ActionCheckpoint: handlers.WithEmptyPayload(actions.HandleCheckpoint),
	}
	controller.OnAccepted(s.recordAction)
	return s
}

// Start поднимает контроллер и открывает запись реплея.
func (s *Session) Start() error {
	state := s.controller.Session()
	var player *domain.Object
	if state.Player != nil {
		snap := *state.Player
		player = &snap
	}

	if err := s.controller.Start(); err != nil {
		return err
	}

	s.mu.Lock()
	s.replay = &domain.ReplaySession{
		Seed:      state.Seed,
		Draws:     state.Draws,
		Timestamp: time.Now().Unix(),
		Start:     state.Portal,
		Player:    player,
		Actions:   make([]domain.ReplayAction, 0),
	}
	s.mu.Unlock()

	s.publish()
	return nil
}

// Run запускает кадровый цикл. Шаг симуляции фиксирован (1/FrameRate),
// поэтому запись реплея воспроизводится независимо от реального времени.
func (s *Session) Run(ctx context.Context) error {
	s.log.WithField("fps", s.cfg.FrameRate).Info("Session loop started")

	ticker := time.NewTicker(s.cfg.FrameDuration())
	defer ticker.Stop()

	dt := 1 / float64(s.cfg.FrameRate)
	for {
		select {
		case <-ctx.Done():
			s.log.WithField("frame", s.frame).Info("Session loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Step(ctx, dt)
		}
	}
}

// Submit ставит команду клиента в очередь. false - очередь переполнена.
func (s *Session) Submit(cmd api.ClientCommand) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		s.log.WithField("action", cmd.Action).Warn("Command queue full, dropped")
		return false
	}
}

// Step - один кадр: команды, хост, контроллер, публикация.
func (s *Session) Step(ctx context.Context, dt float64) {
	// 1. Команды, накопленные с прошлого кадра
	for drained := false; !drained; {
		select {
		case cmd := <-s.commands:
			if err := s.Execute(ctx, cmd); err != nil {
				s.log.WithError(err).WithField("action", cmd.Action).Warn("Command failed")
			}
		default:
			drained = true
		}
	}

	// 2. Анимации и физика хоста (сообщения AnimationDone приходят отсюда)
	s.world.Update(dt)

	// 3. Таймеры и переходы контроллера
	s.controller.Update(dt)

	s.frame++
	if s.controller.Revision() != s.published {
		s.publish()
	}
}

// Execute выполняет команду синхронно. Только из потока симуляции.
func (s *Session) Execute(ctx context.Context, cmd api.ClientCommand) error {
	action := domain.ParseAction(cmd.Action)
	handler, ok := s.handlers[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	result, err := handler(handlers.Context{Ctx: ctx, Player: s.controller}, cmd.Payload)
	if result.Msg != "" {
		s.controller.Journal().Add(result.Msg, result.MsgType)
		s.publish()
	}
	return err
}

func (s *Session) recordAction(action domain.ActionType, dir domain.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replay == nil {
		return
	}
	s.replay.Actions = append(s.replay.Actions, domain.ReplayAction{
		Frame:  s.frame,
		Action: action,
		Dir:    dir,
	})
}

func (s *Session) publish() {
	snap := s.controller.BuildSnapshot()
	snap.Frame = s.frame

	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()

	s.published = s.controller.Revision()
	if s.publisher != nil {
		s.publisher.Broadcast(*snap)
	}
}

// Snapshot - последний опубликованный снимок (безопасно из любой горутины).
func (s *Session) Snapshot() *api.ServerResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	cp := *s.last
	return &cp
}

// Replay - копия записанной ленты.
func (s *Session) Replay() *domain.ReplaySession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.replay == nil {
		return nil
	}
	cp := *s.replay
	cp.Actions = append([]domain.ReplayAction(nil), s.replay.Actions...)
	return &cp
}

func (s *Session) Frame() int { return s.frame }

func (s *Session) Controller() *Controller { return s.controller }

// Play прогоняет запись: команды подаются в те же кадры, в которые были
// приняты, затем симуляция идёт ещё tail кадров.
func (s *Session) Play(ctx context.Context, rec *domain.ReplaySession, tail int) error {
	dt := 1 / float64(s.cfg.FrameRate)
	playLog := s.log.WithField("actions", len(rec.Actions))
	playLog.Info("Replay started")

	next := 0
	for next < len(rec.Actions) {
		if err := ctx.Err(); err != nil {
			return err
		}
		for next < len(rec.Actions) && rec.Actions[next].Frame <= s.frame {
			s.applyReplayAction(rec.Actions[next])
			next++
		}
		s.Step(ctx, dt)
	}
	for i := 0; i < tail; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step(ctx, dt)
	}

	playLog.WithField("frame", s.frame).Info("Replay finished")
	return nil
}

func (s *Session) applyReplayAction(a domain.ReplayAction) {
	accepted := true
	switch a.Action {
	case domain.ActionMove:
		accepted = s.controller.TryMove(a.Dir)
	case domain.ActionShoot:
		accepted = s.controller.TryShoot(a.Dir)
	}
	if !accepted {
		s.log.WithFields(logrus.Fields{
			"frame":  a.Frame,
			"action": a.Action,
			"dir":    a.Dir,
		}).Warn("Replay diverged: recorded action was rejected")
	}
}
