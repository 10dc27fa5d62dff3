package dungeon

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"tower-server/internal/domain"
	"tower-server/pkg/logger"
	"tower-server/pkg/utils"

	"github.com/sirupsen/logrus"
)

// ProceduralPrefix - регионы с таким префиксом генерируются, а не читаются с диска.
const ProceduralPrefix = "gen:"

var ErrRegionNotFound = errors.New("region not found")

// RegionLoader загружает регионы по имени: из файлов каталога Dir
// (name.json / name.yaml / name.yml) или процедурно.
type RegionLoader struct {
	Dir     string
	Seed    int64
	Options RegionOptions
}

func NewRegionLoader(dir string, seed int64) *RegionLoader {
	return &RegionLoader{Dir: dir, Seed: seed, Options: DefaultRegionOptions()}
}

// LoadRegion каждый раз возвращает новый экземпляр региона.
func (l *RegionLoader) LoadRegion(name string) (*domain.Region, error) {
	log := logger.Log.WithFields(logrus.Fields{"component": "region_loader", "region": name})

	if strings.HasPrefix(name, ProceduralPrefix) {
		// Зерно зависит от имени: повторный вход даёт тот же регион
		rng := rand.New(rand.NewSource(l.Seed ^ utils.StringToSeed(name)))
		log.Debug("Generating procedural region")
		return GenerateRegion(name, rng, l.Options)
	}

	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(l.Dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		log.WithField("path", path).Debug("Loading region file")
		return LoadRegionFile(path)
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrRegionNotFound, name, l.Dir)
}
