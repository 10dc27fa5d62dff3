package engine

import (
	"fmt"
	"time"

	"tower-server/internal/domain"
	"tower-server/pkg/api"
	"tower-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

const journalCapacity = 20

// Journal - последние записи игрового лога для снимков клиенту.
type Journal struct {
	entries  []api.LogEntry
	capacity int
	seq      int
	log      *logrus.Entry
}

func NewJournal(capacity int) *Journal {
	return &Journal{
		capacity: capacity,
		log:      logger.Log.WithField("component", "game_log"),
	}
}

// Add добавляет запись. Старые записи сверх ёмкости отбрасываются.
func (j *Journal) Add(text, logType string) {
	j.seq++
	j.entries = append(j.entries, api.LogEntry{
		ID:        fmt.Sprintf("%d_%d", j.seq, time.Now().UnixNano()),
		Text:      text,
		Type:      logType,
		Timestamp: time.Now().UnixMilli(),
	})
	if over := len(j.entries) - j.capacity; over > 0 {
		j.entries = append(j.entries[:0], j.entries[over:]...)
		j.log.WithField("dropped", over).Debug("Journal truncated")
	}
	j.log.WithField("log_type", logType).Debug(text)
}

// Record переводит событие хода в запись лога.
func (j *Journal) Record(ev domain.Event) {
	name := ev.Object.Name
	switch ev.Type {
	case domain.EventObjectHurt:
		if ev.Damage > 0 {
			j.Add(fmt.Sprintf("%s получает %d урона (%d/%d)", name, ev.Damage, ev.Object.Health, ev.Object.MaxHealth), api.LogCombat)
		}
	case domain.EventObjectKilled:
		j.Add(fmt.Sprintf("%s погибает", name), api.LogCombat)
	case domain.EventPlayerLeave:
		j.Add("Вы покидаете комнату", api.LogInfo)
	case domain.EventPlayerEnterPortal:
		j.Add("Вы спускаетесь по лестнице", api.LogInfo)
	}
}

// Entries - копия текущих записей.
func (j *Journal) Entries() []api.LogEntry {
	out := make([]api.LogEntry, len(j.entries))
	copy(out, j.entries)
	return out
}
