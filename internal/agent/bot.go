package agent

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"tower-server/internal/domain"
	"tower-server/pkg/api"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Submitter - куда бот отправляет команды (engine.Session).
type Submitter interface {
	Submit(cmd api.ClientCommand) bool
}

// Subscriber - откуда бот получает снимки (network.Broadcaster).
type Subscriber interface {
	Register(id string) <-chan api.ServerResponse
	Unregister(id string)
}

// Bot - автоигрок (headless agent). Подписывается на снимки как обычный
// клиент и отвечает командами, пока контроллер ждёт ввода.
//
// Жизненный цикл:
//  1. NewBot -> регистрация в хабе, получение личного канала (Inbox).
//  2. Run -> цикл в отдельной горутине до отмены ctx.
//  3. Снимок с IN_LEVEL и Waiting=false -> Decide -> Submit.
//  4. Если снимков нет дольше idle, решение принимается заново по последнему.
type Bot struct {
	ID      string
	Session Submitter
	Hub     Subscriber
	Inbox   <-chan api.ServerResponse

	idle time.Duration
	rng  *rand.Rand
	log  *logrus.Entry
}

func NewBot(id string, session Submitter, hub Subscriber, seed int64, idle time.Duration) *Bot {
	log := logger.Log.WithFields(logrus.Fields{
		"component": "bot",
		"bot_id":    id,
	})
	log.Info("Creating agent")
	return &Bot{
		ID:      id,
		Session: session,
		Hub:     hub,
		Inbox:   hub.Register(id),
		idle:    idle,
		rng:     rand.New(rand.NewSource(seed)),
		log:     log,
	}
}

// Run слушает Inbox до отмены ctx или закрытия канала.
func (b *Bot) Run(ctx context.Context) {
	defer b.Hub.Unregister(b.ID)

	ticker := time.NewTicker(b.idle)
	defer ticker.Stop()

	var last *api.ServerResponse
	for {
		select {
		case <-ctx.Done():
			b.log.Info("Agent stopped")
			return
		case snap, ok := <-b.Inbox:
			if !ok {
				b.log.Info("Agent shut down")
				return
			}
			if snap.Type != api.TypeSnapshot {
				continue
			}
			last = &snap
			b.act(snap)
			ticker.Reset(b.idle)
		case <-ticker.C:
			// Ход упёрся в стену без анимации: снимка не будет, пробуем снова
			if last != nil {
				b.act(*last)
			}
		}
	}
}

func (b *Bot) act(snap api.ServerResponse) {
	cmd, ok := b.Decide(snap)
	if !ok {
		return
	}
	if !b.Session.Submit(cmd) {
		b.log.Debug("Command queue full, skipping")
	}
}

// Decide - мозг бота. Только по данным снимка:
//  1. враг на одной линии и есть патроны -> SHOOT;
//  2. на карте есть лестница -> шаг к ней;
//  3. иначе случайный проходимый шаг.
func (b *Bot) Decide(snap api.ServerResponse) (api.ClientCommand, bool) {
	if snap.State != "IN_LEVEL" || snap.Waiting || snap.Grid == nil {
		return api.ClientCommand{}, false
	}

	view := newLocalView(snap)
	me, ok := view.player()
	if !ok {
		return api.ClientCommand{}, false
	}

	if me.Ammo > 0 {
		if dir, ok := view.lineOfFire(me); ok {
			return command(domain.ActionShoot, dir), true
		}
	}

	if stairs, ok := view.stairs(); ok {
		if dir, ok := view.stepToward(me, stairs); ok {
			return command(domain.ActionMove, dir), true
		}
	}

	open := make([]domain.Direction, 0, len(domain.AllDirections))
	for _, d := range domain.AllDirections {
		if view.passable(pos(me.Pos).Step(d)) {
			open = append(open, d)
		}
	}
	if len(open) == 0 {
		return api.ClientCommand{}, false
	}
	return command(domain.ActionMove, open[b.rng.Intn(len(open))]), true
}

func command(action domain.ActionType, dir domain.Direction) api.ClientCommand {
	payload, _ := json.Marshal(api.DirectionPayload{Dir: dir.String()})
	return api.ClientCommand{Action: action.String(), Payload: payload}
}

func pos(p api.PointView) domain.Position {
	return domain.Position{X: p.X, Y: p.Y}
}

// localView - локальная копия комнаты, восстановленная из DTO.
type localView struct {
	snap    api.ServerResponse
	tiles   map[domain.Position]api.TileView
	objects map[domain.Position]api.ObjectView
	blocked map[domain.Position]bool
}

func newLocalView(snap api.ServerResponse) *localView {
	v := &localView{
		snap:    snap,
		tiles:   make(map[domain.Position]api.TileView, len(snap.Map)),
		objects: make(map[domain.Position]api.ObjectView, len(snap.Objects)),
		blocked: make(map[domain.Position]bool),
	}
	for _, t := range snap.Map {
		v.tiles[domain.Position{X: t.X, Y: t.Y}] = t
	}
	for _, o := range snap.Objects {
		v.objects[pos(o.Pos)] = o
	}
	for _, f := range snap.Features {
		closedDoor := f.Kind == "door" && f.State == "active"
		pit := f.Kind == "breakable_floor" && f.State == "inactive"
		spikes := f.Kind == "spikes" && f.State == "active"
		if closedDoor || pit || spikes {
			v.blocked[pos(f.Pos)] = true
		}
	}
	return v
}

func (v *localView) player() (api.ObjectView, bool) {
	for _, o := range v.snap.Objects {
		if o.IsPlayer {
			return o, true
		}
	}
	return api.ObjectView{}, false
}

func (v *localView) stairs() (domain.Position, bool) {
	for _, t := range v.snap.Map {
		if t.Stairs {
			return domain.Position{X: t.X, Y: t.Y}, true
		}
	}
	return domain.Position{}, false
}

// passable - клетка в сетке, проходима и свободна.
// Выход за край комнаты тоже допустим: это переход в соседнюю.
func (v *localView) passable(p domain.Position) bool {
	t, ok := v.tiles[p]
	if !ok {
		return false
	}
	if _, busy := v.objects[p]; busy {
		return false
	}
	return t.Walkable && !v.blocked[p]
}

// lineOfFire ищет живого врага на одной линии без препятствий между.
func (v *localView) lineOfFire(me api.ObjectView) (domain.Direction, bool) {
	for _, d := range domain.AllDirections {
		cur := pos(me.Pos)
		for {
			cur = cur.Step(d)
			t, ok := v.tiles[cur]
			if !ok || !t.Walkable || v.blocked[cur] {
				break
			}
			if o, busy := v.objects[cur]; busy {
				if o.Kind == domain.ObjectCharacter.String() && !o.IsPlayer && o.HP > 0 {
					return d, true
				}
				break
			}
		}
	}
	return domain.DirNone, false
}

// stepToward - жадный шаг: сначала по оси с большим расстоянием.
func (v *localView) stepToward(me api.ObjectView, target domain.Position) (domain.Direction, bool) {
	from := pos(me.Pos)
	dx, dy := target.X-from.X, target.Y-from.Y

	var horiz, vert domain.Direction
	if dx > 0 {
		horiz = domain.DirRight
	} else if dx < 0 {
		horiz = domain.DirLeft
	}
	if dy > 0 {
		vert = domain.DirDown
	} else if dy < 0 {
		vert = domain.DirUp
	}

	order := []domain.Direction{horiz, vert}
	if abs(dy) > abs(dx) {
		order = []domain.Direction{vert, horiz}
	}
	for _, d := range order {
		if d != domain.DirNone && v.passable(from.Step(d)) {
			return d, true
		}
	}
	return domain.DirNone, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
