package domain

// Portal - точка входа в регион: имя региона, комната, клетка.
type Portal struct {
	Region string   `json:"region" yaml:"region"`
	Level  Position `json:"level" yaml:"level"`
	Tile   Position `json:"tile" yaml:"tile"`
}

// Region - двумерная сетка комнат и список порталов.
// Комнаты может не быть (nil): туда нельзя выйти.
type Region struct {
	Name    string
	Width   int
	Height  int
	Portals []Portal

	levels []*Level
}

func NewRegion(name string, width, height int) *Region {
	return &Region{
		Name:   name,
		Width:  width,
		Height: height,
		levels: make([]*Level, width*height),
	}
}

func (r *Region) inBounds(x, y int) bool {
	return x >= 0 && x < r.Width && y >= 0 && y < r.Height
}

// SetLevel кладёт комнату в сетку региона.
func (r *Region) SetLevel(x, y int, l *Level) error {
	if !r.inBounds(x, y) {
		return ErrOutOfBounds
	}
	r.levels[x+r.Width*y] = l
	return nil
}

// Level возвращает комнату или false (вне сетки или пустая ячейка).
func (r *Region) Level(x, y int) (*Level, bool) {
	if !r.inBounds(x, y) {
		return nil, false
	}
	l := r.levels[x+r.Width*y]
	return l, l != nil
}

func (r *Region) LevelAt(p Position) (*Level, bool) {
	return r.Level(p.X, p.Y)
}

// Portal ищет портал по индексу.
func (r *Region) Portal(id int) (Portal, bool) {
	if id < 0 || id >= len(r.Portals) {
		return Portal{}, false
	}
	return r.Portals[id], true
}

// Each обходит все существующие комнаты в порядке строк.
func (r *Region) Each(fn func(pos Position, l *Level)) {
	for i, l := range r.levels {
		if l == nil {
			continue
		}
		fn(Position{X: i % r.Width, Y: i / r.Width}, l)
	}
}
