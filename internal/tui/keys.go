package tui

import (
	"encoding/json"

	"tower-server/pkg/api"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	ShootUp    key.Binding
	ShootDown  key.Binding
	ShootLeft  key.Binding
	ShootRight key.Binding

	Aim        key.Binding
	Checkpoint key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "w"), key.WithHelp("↑/w", "вверх")),
		Down:  key.NewBinding(key.WithKeys("down", "s"), key.WithHelp("↓/s", "вниз")),
		Left:  key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←/a", "влево")),
		Right: key.NewBinding(key.WithKeys("right", "d"), key.WithHelp("→/d", "вправо")),

		ShootUp:    key.NewBinding(key.WithKeys("shift+up", "W")),
		ShootDown:  key.NewBinding(key.WithKeys("shift+down", "S")),
		ShootLeft:  key.NewBinding(key.WithKeys("shift+left", "A")),
		ShootRight: key.NewBinding(key.WithKeys("shift+right", "D")),

		Aim:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f+dir", "выстрел")),
		Checkpoint: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "сохранить")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "выход")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Aim, k.Checkpoint, k.Quit}
}

// direction возвращает направление хода и признак выстрела.
// aiming - перед этим нажата клавиша прицеливания.
func (k keyMap) direction(msg tea.KeyMsg, aiming bool) (dir string, shoot bool) {
	switch {
	case key.Matches(msg, k.ShootUp):
		return "UP", true
	case key.Matches(msg, k.ShootDown):
		return "DOWN", true
	case key.Matches(msg, k.ShootLeft):
		return "LEFT", true
	case key.Matches(msg, k.ShootRight):
		return "RIGHT", true
	case key.Matches(msg, k.Up):
		return "UP", aiming
	case key.Matches(msg, k.Down):
		return "DOWN", aiming
	case key.Matches(msg, k.Left):
		return "LEFT", aiming
	case key.Matches(msg, k.Right):
		return "RIGHT", aiming
	}
	return "", false
}

// command переводит нажатие в команду протокола. false - клавиша не игровая.
func (k keyMap) command(msg tea.KeyMsg, aiming bool) (api.ClientCommand, bool) {
	if key.Matches(msg, k.Checkpoint) {
		return api.ClientCommand{Action: "CHECKPOINT"}, true
	}

	dir, shoot := k.direction(msg, aiming)
	if dir == "" {
		return api.ClientCommand{}, false
	}

	action := "MOVE"
	if shoot {
		action = "SHOOT"
	}
	payload, _ := json.Marshal(api.DirectionPayload{Dir: dir})
	return api.ClientCommand{Action: action, Payload: payload}, true
}
