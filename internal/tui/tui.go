package tui

import (
	"context"
	"time"

	"tower-server/internal/engine"
	"tower-server/internal/scene"
	"tower-server/pkg/logger"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// tickMsg - кадр симуляции.
type tickMsg time.Time

// Model - локальный терминальный клиент. Владеет потоком симуляции:
// кадры сессии и команды выполняются прямо в Update.
type Model struct {
	ctx     context.Context
	session *engine.Session
	world   *scene.Scene

	keys keyMap
	help help.Model

	frameDur time.Duration
	dt       float64

	aiming   bool
	status   string
	width    int
	height   int
	quitting bool

	log *logrus.Entry
}

func New(ctx context.Context, cfg engine.Config, session *engine.Session, world *scene.Scene) Model {
	return Model{
		ctx:      ctx,
		session:  session,
		world:    world,
		keys:     defaultKeyMap(),
		help:     help.New(),
		frameDur: cfg.FrameDuration(),
		dt:       1 / float64(cfg.FrameRate),
		width:    80,
		log:      logger.Log.WithFields(logrus.Fields{"component": "tui"}),
	}
}

// Run запускает программу Bubble Tea до выхода игрока.
func Run(ctx context.Context, cfg engine.Config, session *engine.Session, world *scene.Scene) error {
	p := tea.NewProgram(New(ctx, cfg, session, world), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frameDur, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.session.Step(m.ctx, m.dt)
		return m, m.tick()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Aim) {
			m.aiming = !m.aiming
			return m, nil
		}

		cmd, ok := m.keys.command(msg, m.aiming)
		if !ok {
			return m, nil
		}
		m.aiming = false
		m.status = ""
		if err := m.session.Execute(m.ctx, cmd); err != nil {
			m.status = err.Error()
			m.log.WithError(err).WithField("action", cmd.Action).Debug("Command rejected")
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.session.Snapshot()

	dim := m.world != nil && m.world.Fade() > 0
	grid := renderGrid(snap, dim)

	sections := []string{renderStatus(snap, m.width), grid}
	if m.world != nil {
		if labels := renderLabels(m.world.Visuals()); labels != "" {
			sections = append(sections, labels)
		}
	}
	if snap != nil {
		sections = append(sections, renderLogs(snap.Logs))
	}

	footer := m.help.ShortHelpView(m.keys.help())
	if m.aiming {
		footer = styleLabel.Render("ПРИЦЕЛ: выберите направление") + "  " + footer
	}
	if m.status != "" {
		footer = styleCombat.Render(m.status) + "\n" + footer
	}
	sections = append(sections, styleHelp.Render(footer))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
