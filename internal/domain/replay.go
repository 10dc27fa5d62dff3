package domain

// ReplayAction - одна принятая команда игрока, привязанная к кадру симуляции.
type ReplayAction struct {
	Frame  int        `json:"frame"`
	Action ActionType `json:"action"`
	Dir    Direction  `json:"dir"`
}

// ReplaySession - полная запись партии. При тех же Seed/Draws, стартовом
// портале, снимке игрока и фиксированном шаге кадра воспроизведение
// детерминировано. Player == nil - игрок создаётся из шаблона.
type ReplaySession struct {
	Seed      int64          `json:"seed"`
	Draws     int64          `json:"draws"`
	Timestamp int64          `json:"timestamp"`
	Start     Portal         `json:"start"`
	Player    *Object        `json:"player,omitempty"`
	Actions   []ReplayAction `json:"actions"`
}

// SessionState - стартовое состояние для пересимуляции записи.
// Снимок игрока копируется: запись остаётся неизменной.
func (r *ReplaySession) SessionState(id string) *SessionState {
	state := &SessionState{ID: id, Seed: r.Seed, Draws: r.Draws, Portal: r.Start}
	if r.Player != nil {
		p := *r.Player
		state.Player = &p
	}
	return state
}
