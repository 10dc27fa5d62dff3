package tui

import "github.com/charmbracelet/lipgloss"

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleWall = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleFloor = lipgloss.NewStyle().
			Foreground(lipgloss.Color("237"))

	styleStairs = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	stylePlayer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	styleEnemy = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleObject = lipgloss.NewStyle().
			Foreground(lipgloss.Color("180"))

	styleFeature = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	styleLog = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	styleCombat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	styleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleFade = lipgloss.NewStyle().
			Foreground(lipgloss.Color("235"))
)
