package engine

import (
	"tower-server/internal/domain"
	"tower-server/internal/systems"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

// Hit - попадание пули: клетка и направление полёта.
type Hit struct {
	Cell domain.Position
	Dir  domain.Direction
}

// Projectiles - пули в реальном времени. Это не объекты сетки:
// хост двигает их сам и сообщает о столкновении через OnHit.
type Projectiles struct {
	host  Host
	world *LevelState
	speed float64
	onHit func(Hit)

	live mapset.Set[domain.EntityID]
	log  *logrus.Entry
}

// NewProjectiles - пули живут в активной комнате world.
func NewProjectiles(host Host, world *LevelState, speed float64) *Projectiles {
	return &Projectiles{
		host:  host,
		world: world,
		speed: speed,
		live:  mapset.New[domain.EntityID](),
		log:   logger.Log.WithField("component", "projectiles"),
	}
}

// SetHitHandler задаёт, куда отправлять попадания (обычно ProcessRealTimeEvent контроллера).
func (p *Projectiles) SetHitHandler(fn func(Hit)) {
	p.onHit = fn
}

// Spawn выпускает пулю из клетки стрелка.
func (p *Projectiles) Spawn(shooter *domain.Object, dir domain.Direction) domain.EntityID {
	origin := shooter.Cell()

	var id domain.EntityID
	id = p.host.CreateEntity(EntitySpec{
		Kind:   domain.EntityKindBullet,
		Room:   p.world.Room(),
		Name:   "bullet",
		Pos:    origin.Vec(),
		Facing: dir,
		Mesh:   "bullet.obj",
		Physics: &PhysicsSpec{
			Velocity: dir.Vector().Scale(p.speed),
			Probe: func(pos domain.Vec2) systems.ProbeResult {
				return systems.ProbeProjectile(p.world, origin, pos)
			},
			OnHit: func(res systems.ProbeResult) {
				p.live.Remove(id)
				if !res.Hit {
					return
				}
				p.log.WithFields(logrus.Fields{"cell": res.Cell, "dir": dir}).Debug("Projectile hit")
				if p.onHit != nil {
					p.onHit(Hit{Cell: res.Cell, Dir: dir})
				}
			},
		},
	})
	p.live.Put(id)
	return id
}

// Clear удаляет все летящие пули (смена комнаты, смена региона).
func (p *Projectiles) Clear() {
	p.live.Each(func(id domain.EntityID) {
		p.host.DestroyEntity(id)
	})
	p.live = mapset.New[domain.EntityID]()
}

func (p *Projectiles) Count() int {
	return p.live.Size()
}
