package api

import (
	"encoding/json"
)

// Типы сообщений сервера
const (
	TypeSnapshot = "SNAPSHOT"
	TypeError    = "ERROR"
)

// Типы записей лога
const (
	LogInfo   = "INFO"
	LogCombat = "COMBAT"
	LogError  = "ERROR"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Он представляет собой полный "снимок" активной комнаты сессии.
// Отправляется после каждого кадра, в котором что-то изменилось.
type ServerResponse struct {
	// Type тип сообщения: "SNAPSHOT" или "ERROR".
	Type string `json:"type"`

	// Session ID сессии (ULID).
	Session string `json:"session,omitempty"`

	// Frame номер кадра симуляции.
	Frame int `json:"frame"`

	// State состояние контроллера: IN_LEVEL или IN_TRANSITION.
	// Ввод принимается только в IN_LEVEL и когда Waiting=false.
	State   string `json:"state,omitempty"`
	Waiting bool   `json:"waiting"`

	// Region имя текущего региона, Room координата комнаты в нём.
	Region string     `json:"region,omitempty"`
	Room   *PointView `json:"room,omitempty"`

	// Grid метаданные о размере комнаты.
	Grid *GridMeta `json:"grid,omitempty"`

	// Map все тайлы комнаты.
	Map []TileView `json:"map,omitempty"`

	// Objects живые объекты комнаты.
	Objects []ObjectView `json:"objects,omitempty"`

	// Features интерактивные элементы комнаты.
	Features []FeatureView `json:"features,omitempty"`

	// Projectiles количество пуль в полёте.
	Projectiles int `json:"projectiles"`

	// Logs последние записи игрового лога.
	Logs []LogEntry `json:"logs,omitempty"`

	// Error текст ошибки для Type == "ERROR".
	Error string `json:"error,omitempty"`
}

// GridMeta содержит размеры комнаты, чтобы клиент знал,
// какую сетку для рендеринга нужно подготовить.
type GridMeta struct {
	Width  int `json:"w"`
	Height int `json:"h"`
}

// PointView - целочисленная координата.
type PointView struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TileView это DTO (Data Transfer Object) для одного тайла комнаты.
type TileView struct {
	X int `json:"x"`
	Y int `json:"y"`

	// Symbol визуальное представление тайла (e.g. "#" для стены, ">" для лестницы).
	Symbol string `json:"symbol"`

	Walkable bool `json:"walkable"`
	Stairs   bool `json:"stairs,omitempty"`
}

// ObjectView это DTO для объекта сетки.
type ObjectView struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Kind   string    `json:"kind"` // character, boulder, terminal, pickup
	Pos    PointView `json:"pos"`
	Facing string    `json:"facing"`

	HP       int  `json:"hp"`
	MaxHP    int  `json:"maxHp"`
	Ammo     int  `json:"ammo,omitempty"`
	IsPlayer bool `json:"isPlayer,omitempty"`
}

// FeatureView это DTO для интерактивного элемента.
type FeatureView struct {
	Kind  string    `json:"kind"` // door, button, spikes, breakable_floor
	Pos   PointView `json:"pos"`
	State string    `json:"state"` // active, inactive
}

// LogEntry представляет одну запись в игровом логе.
type LogEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type"`      // INFO, COMBAT, ERROR
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Action название действия: MOVE, SHOOT, CHECKPOINT, INIT.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Payloads ---

// DirectionPayload используется для действий с направлением (MOVE, SHOOT).
type DirectionPayload struct {
	Dir string `json:"dir"` // UP, DOWN, LEFT, RIGHT
}
