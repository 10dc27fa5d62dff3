package domain

import "strings"

// EventType - Внутренний числовой идентификатор события хода
type EventType uint8

const (
	EventUnknown EventType = iota
	EventPlayerLeave
	EventPlayerEnterPortal
	EventObjectHurt
	EventObjectKilled
)

// Маппинг для конвертации JSON -> Domain
var eventStringToType = map[string]EventType{
	"PLAYER_LEAVE":        EventPlayerLeave,
	"PLAYER_ENTER_PORTAL": EventPlayerEnterPortal,
	"OBJECT_HURT":         EventObjectHurt,
	"OBJECT_KILLED":       EventObjectKilled,
}

// Маппинг для логов Domain -> String
var eventTypeToString = map[EventType]string{
	EventPlayerLeave:       "PLAYER_LEAVE",
	EventPlayerEnterPortal: "PLAYER_ENTER_PORTAL",
	EventObjectHurt:        "OBJECT_HURT",
	EventObjectKilled:      "OBJECT_KILLED",
}

// ParseEvent конвертирует строку в EventType
func ParseEvent(s string) EventType {
	if val, ok := eventStringToType[strings.ToUpper(s)]; ok {
		return val
	}
	return EventUnknown
}

func (e EventType) String() string {
	if val, ok := eventTypeToString[e]; ok {
		return val
	}
	return "UNKNOWN"
}

// Event - неизменяемая запись результата хода.
// Object - копия состояния затронутого объекта на момент события.
// Живёт только до конца обработки текущего хода.
type Event struct {
	Type   EventType `json:"type"`
	Object Object    `json:"object"`
	Damage int       `json:"damage,omitempty"`
}
