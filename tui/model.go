// Package tui provides the interactive page run monitor.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/deferview/deferview/key"
	"github.com/deferview/deferview/media"
	"github.com/deferview/deferview/page"
	"github.com/deferview/deferview/portal"
	"github.com/deferview/deferview/viewport"
	"github.com/spf13/viper"
)

// row is one monitored unit, either a deferred image or a portal.
type row struct {
	id     string
	record *media.Record
	ctrl   *portal.Controller
}

type model struct {
	pagePath string
	engine   *viewport.ScrollEngine
	session  *page.Session
	loader   *media.Loader

	rows     []row
	cursor   int
	unloaded bool

	keymap   *keymap
	spinnerC spinner.Model
	helpC    help.Model

	width, height int
}

type tickMsg time.Time

func newModel(pagePath string, engine *viewport.ScrollEngine, session *page.Session, loader *media.Loader, ctrls []*portal.Controller) *model {
	m := &model{
		pagePath: pagePath,
		engine:   engine,
		session:  session,
		loader:   loader,
		keymap:   newKeymap(),
		spinnerC: spinner.New(spinner.WithSpinner(spinner.Dot)),
		helpC:    help.New(),
	}

	for _, r := range loader.Records() {
		m.rows = append(m.rows, row{id: r.ID(), record: r})
	}
	for _, c := range ctrls {
		m.rows = append(m.rows, row{id: c.MountID(), ctrl: c})
	}
	return m
}

func (m *model) tick() tea.Cmd {
	interval := time.Duration(viper.GetInt(key.TUITickMs)) * time.Millisecond
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinnerC.Tick, m.tick())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.helpC.Width = msg.Width
		return m, nil

	case tickMsg:
		// Statuses live in the runtime; the tick just re-renders.
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinnerC, cmd = m.spinnerC.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	switch {
	case matches(msg, k.quit), matches(msg, k.forceQuit):
		m.session.Unload()
		return m, tea.Quit

	case matches(msg, k.up):
		if m.cursor > 0 {
			m.cursor--
		}

	case matches(msg, k.down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case matches(msg, k.toggle):
		if r, ok := m.selected(); ok {
			m.engine.SetVisible(r.id, !m.engine.Visible(r.id))
		}

	case matches(msg, k.start):
		if r, ok := m.selected(); ok && r.ctrl != nil {
			r.ctrl.ManualStart()
		}

	case matches(msg, k.unload):
		m.session.Unload()
		m.unloaded = true

	case matches(msg, k.showHelp):
		m.helpC.ShowAll = !m.helpC.ShowAll
	}

	return m, nil
}

func (m *model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}
