package systems

import (
	"os"
	"testing"

	"tower-server/internal/domain"
	"tower-server/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	// Exit with the result of the tests
	os.Exit(m.Run())
}

// testWorld - минимальная реализация WorldView для тестов.
type testWorld struct {
	level    *domain.Level
	objects  map[domain.Position]*domain.Object
	features map[domain.Position]*domain.Feature
}

// newTestWorld: '#' - стена, любой другой символ - пол.
func newTestWorld(t *testing.T, rows ...string) *testWorld {
	t.Helper()
	w, h := len(rows[0]), len(rows)
	tiles := make([]domain.Tile, 0, w*h)
	for _, row := range rows {
		for _, ch := range row {
			if ch == '#' {
				tiles = append(tiles, domain.Wall())
			} else {
				tiles = append(tiles, domain.Floor())
			}
		}
	}
	level, err := domain.NewLevel(w, h, tiles)
	if err != nil {
		t.Fatalf("NewLevel: %v", err)
	}
	return &testWorld{
		level:    level,
		objects:  make(map[domain.Position]*domain.Object),
		features: make(map[domain.Position]*domain.Feature),
	}
}

func (w *testWorld) Level() *domain.Level { return w.level }

func (w *testWorld) ObjectAt(x, y int) *domain.Object {
	return w.objects[domain.Position{X: x, Y: y}]
}

func (w *testWorld) FeatureAt(x, y int) *domain.Feature {
	return w.features[domain.Position{X: x, Y: y}]
}

func (w *testWorld) place(name string, kind domain.ObjectKind, x, y int) *domain.Object {
	obj := &domain.Object{
		Name:      name,
		Kind:      kind,
		Pos:       domain.Vec2{X: float64(x), Y: float64(y)},
		Health:    1,
		MaxHealth: 1,
	}
	w.objects[obj.Cell()] = obj
	return obj
}

// fixedRand - детерминированный источник: Float64 всегда f, Intn по списку.
type fixedRand struct {
	f    float64
	ints []int
	i    int
}

func (r *fixedRand) Float64() float64 { return r.f }

func (r *fixedRand) Intn(n int) int {
	v := 0
	if r.i < len(r.ints) {
		v = r.ints[r.i] % n
	}
	r.i++
	return v
}
