package domain

// Feature - интерактивный элемент, привязанный к клетке.
//
// Семантика Active по типам:
//   - door: закрыта (блокирует проход)
//   - button: нажата
//   - spikes: выдвинуты (наносят урон)
//   - breakable_floor: пол цел; после ухода объекта становится ямой
type Feature struct {
	Kind   FeatureKind `json:"kind"`
	Cell   Position    `json:"cell"`
	Target int         `json:"target"`
	Active bool        `json:"active"`
	Entity EntityID    `json:"entity"`
}

// NewFeature создаёт элемент в начальном состоянии для своего типа.
func NewFeature(kind FeatureKind, cell Position, target int) *Feature {
	f := &Feature{Kind: kind, Cell: cell, Target: target}
	switch kind {
	case FeatureDoor, FeatureSpikes, FeatureBreakableFloor:
		f.Active = true
	}
	return f
}

func (f *Feature) Toggle() {
	f.Active = !f.Active
}

// Blocks - нельзя войти в клетку: закрытая дверь или провал.
func (f *Feature) Blocks() bool {
	switch f.Kind {
	case FeatureDoor:
		return f.Active
	case FeatureBreakableFloor:
		return !f.Active
	}
	return false
}

// State - строковое состояние для протокола и отрисовки.
func (f *Feature) State() string {
	if f.Active {
		return "active"
	}
	return "inactive"
}
