package domain

import "time"

// SessionState - сохраняемое состояние сессии: последний портал (точка
// возрождения), снимок игрока и положение потока случайных чисел.
type SessionState struct {
	ID        string    `json:"id"`
	Portal    Portal    `json:"portal"`
	Player    *Object   `json:"player,omitempty"`
	Seed      int64     `json:"seed"`
	Draws     int64     `json:"draws"`
	UpdatedAt time.Time `json:"updatedAt"`
}
