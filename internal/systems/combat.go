package systems

import (
	"tower-server/internal/domain"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// DamageFor - урон от одного удара: валуны неуязвимы.
func DamageFor(target *domain.Object) int {
	if target.IsBoulder() {
		return 0
	}
	return domain.MeleeDamage
}

// PushDestination - клетка, куда цель отлетит по направлению удара.
// false, если толкать некуда (стена, край, занято).
func PushDestination(w WorldView, target *domain.Object, dir domain.Direction) (domain.Position, bool) {
	dest := target.Cell().Step(dir)
	if !IsCellFree(w, dest) {
		logger.Log.WithFields(logrus.Fields{
			"component": "combat_system",
			"target":    target.Name,
			"from":      target.Cell(),
			"to":        dest,
		}).Debug("Push blocked, damage still applies")
		return dest, false
	}
	return dest, true
}
