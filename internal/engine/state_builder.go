package engine

import (
	"tower-server/internal/domain"
	"tower-server/pkg/api"
)

// TileSymbol - символ тайла для текстовых клиентов.
func TileSymbol(t domain.Tile) string {
	switch {
	case t.IsStairs:
		return ">"
	case !t.Walkable:
		return "#"
	}
	return "."
}

// BuildSnapshot создает "снимок" активной комнаты для клиента.
func (c *Controller) BuildSnapshot() *api.ServerResponse {
	resp := &api.ServerResponse{
		Type:        api.TypeSnapshot,
		Session:     c.session.ID,
		State:       c.mode.String(),
		Waiting:     c.waiting,
		Projectiles: c.projectiles.Count(),
		Logs:        c.journal.Entries(),
	}
	if c.region != nil {
		resp.Region = c.region.Name
		resp.Room = &api.PointView{X: c.levelPos.X, Y: c.levelPos.Y}
	}

	level := c.state.Level()
	if level == nil {
		return resp
	}

	// 1. Карта
	resp.Grid = &api.GridMeta{Width: level.Width(), Height: level.Height()}
	resp.Map = make([]api.TileView, 0, level.Width()*level.Height())
	for i, t := range level.Tiles() {
		cell := level.CellOf(i)
		resp.Map = append(resp.Map, api.TileView{
			X:        cell.X,
			Y:        cell.Y,
			Symbol:   TileSymbol(t),
			Walkable: t.Walkable,
			Stairs:   t.IsStairs,
		})
	}

	// 2. Объекты
	for _, obj := range c.state.Objects() {
		cell := obj.Cell()
		resp.Objects = append(resp.Objects, api.ObjectView{
			ID:       obj.Entity.String(),
			Name:     obj.Name,
			Kind:     obj.Kind.String(),
			Pos:      api.PointView{X: cell.X, Y: cell.Y},
			Facing:   obj.Facing.String(),
			HP:       obj.Health,
			MaxHP:    obj.MaxHealth,
			Ammo:     obj.Ammo,
			IsPlayer: obj.IsPlayer(),
		})
	}

	// 3. Элементы
	for _, f := range c.state.Features() {
		resp.Features = append(resp.Features, api.FeatureView{
			Kind:  f.Kind.String(),
			Pos:   api.PointView{X: f.Cell.X, Y: f.Cell.Y},
			State: f.State(),
		})
	}

	return resp
}
