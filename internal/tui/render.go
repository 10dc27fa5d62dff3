package tui

import (
	"fmt"
	"strings"

	"tower-server/internal/domain"
	"tower-server/internal/scene"
	"tower-server/pkg/api"

	"github.com/charmbracelet/lipgloss"
)

// Сколько последних записей лога показывать под картой.
const visibleLogs = 6

// objectGlyph - символ объекта на карте.
func objectGlyph(o api.ObjectView) string {
	if o.IsPlayer {
		return "@"
	}
	switch o.Kind {
	case "boulder":
		return "O"
	case "terminal":
		return "&"
	case "pickup":
		return "*"
	}
	if o.Name == "" {
		return "?"
	}
	return strings.ToLower(o.Name[:1])
}

// featureGlyph - символ элемента с учётом состояния.
func featureGlyph(f api.FeatureView) string {
	active := f.State == "active"
	switch f.Kind {
	case "door":
		if active {
			return "+"
		}
		return "'"
	case "button":
		if active {
			return "_"
		}
		return "o"
	case "spikes":
		if active {
			return "^"
		}
		return ","
	case "breakable_floor":
		if active {
			return ":"
		}
		return " "
	}
	return "?"
}

// renderGrid рисует комнату: тайлы, поверх элементы, поверх объекты.
// dim - экран затемнён (смена региона), всё одним тусклым цветом.
func renderGrid(snap *api.ServerResponse, dim bool) string {
	if snap == nil || snap.Grid == nil {
		return ""
	}
	w, h := snap.Grid.Width, snap.Grid.Height

	cells := make([]string, w*h)
	plain := make([]string, w*h)
	for i := range plain {
		plain[i] = " "
	}
	for _, t := range snap.Map {
		if t.X < 0 || t.X >= w || t.Y < 0 || t.Y >= h {
			continue
		}
		plain[t.X+w*t.Y] = t.Symbol
		style := styleFloor
		switch {
		case t.Stairs:
			style = styleStairs
		case !t.Walkable:
			style = styleWall
		}
		cells[t.X+w*t.Y] = style.Render(t.Symbol)
	}
	for _, f := range snap.Features {
		if f.Pos.X >= 0 && f.Pos.X < w && f.Pos.Y >= 0 && f.Pos.Y < h {
			plain[f.Pos.X+w*f.Pos.Y] = featureGlyph(f)
			cells[f.Pos.X+w*f.Pos.Y] = styleFeature.Render(featureGlyph(f))
		}
	}
	for _, o := range snap.Objects {
		if o.Pos.X < 0 || o.Pos.X >= w || o.Pos.Y < 0 || o.Pos.Y >= h {
			continue
		}
		style := styleObject
		switch {
		case o.IsPlayer:
			style = stylePlayer
		case o.Kind == "character":
			style = styleEnemy
		}
		plain[o.Pos.X+w*o.Pos.Y] = objectGlyph(o)
		cells[o.Pos.X+w*o.Pos.Y] = style.Render(objectGlyph(o))
	}

	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[x+w*y]
			if c == "" {
				c = " "
			}
			if dim {
				c = styleFade.Render(plain[x+w*y])
			}
			b.WriteString(c)
		}
		if y < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderStatus - строка состояния: регион, комната, здоровье, патроны.
func renderStatus(snap *api.ServerResponse, width int) string {
	if snap == nil {
		return styleStatusBar.Width(width).Render(" ...")
	}

	hp, ammo := "-", "-"
	for _, o := range snap.Objects {
		if o.IsPlayer {
			hp = fmt.Sprintf("%d/%d", o.HP, o.MaxHP)
			ammo = fmt.Sprintf("%d", o.Ammo)
			break
		}
	}

	room := ""
	if snap.Room != nil {
		room = fmt.Sprintf(" (%d,%d)", snap.Room.X, snap.Room.Y)
	}

	left := fmt.Sprintf(" %s%s | HP %s | Ammo %s", snap.Region, room, hp, ammo)
	right := fmt.Sprintf("%s F:%d ", snap.State, snap.Frame)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return styleStatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

// renderLabels - всплывающие надписи урона из сцены.
func renderLabels(visuals []scene.Visual) string {
	var parts []string
	for _, v := range visuals {
		if v.Kind != domain.EntityKindEffect || v.Text == "" {
			continue
		}
		cell := v.Pos.Cell()
		parts = append(parts, styleLabel.Render(fmt.Sprintf("%s@%d,%d", v.Text, cell.X, cell.Y)))
	}
	return strings.Join(parts, " ")
}

func renderLogs(logs []api.LogEntry) string {
	if len(logs) > visibleLogs {
		logs = logs[len(logs)-visibleLogs:]
	}
	lines := make([]string, 0, len(logs))
	for _, l := range logs {
		style := styleLog
		if l.Type == api.LogCombat {
			style = styleCombat
		}
		lines = append(lines, style.Render(l.Text))
	}
	return strings.Join(lines, "\n")
}
