// Package tui renders a live dashboard over the blocking state: active
// schedules, the quick-block session, lock mode, and the cosmetic pause.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smorton/sitegate/internal/lock"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/pause"
	"github.com/smorton/sitegate/internal/session"
	"github.com/smorton/sitegate/internal/settings"
)

type KeyMap struct {
	TogglePause key.Binding
	EndSession  key.Binding
	Refresh     key.Binding
	Quit        key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TogglePause, k.EndSession, k.Refresh, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.TogglePause, k.EndSession}, {k.Refresh, k.Quit}}
}

var defaultKeys = KeyMap{
	TogglePause: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume filters")),
	EndSession:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end session")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

type Model struct {
	settings *settings.Store
	lock     *lock.Manager
	pause    *pause.Manager
	session  *session.Manager

	keys KeyMap
	help help.Model

	current    models.Settings
	lockState  models.LockState
	pauseState models.PauseState
	active     *models.QuickBlockSession
	now        time.Time
	err        error
}

func NewModel(store *settings.Store, lockMgr *lock.Manager, pauseMgr *pause.Manager, sessionMgr *session.Manager) Model {
	m := Model{
		settings: store,
		lock:     lockMgr,
		pause:    pauseMgr,
		session:  sessionMgr,
		keys:     defaultKeys,
		help:     help.New(),
		now:      time.Now(),
	}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	m.now = time.Now()
	m.err = nil

	current, err := m.settings.Get()
	if err != nil {
		m.err = err
		return
	}
	m.current = current

	if m.lockState, err = m.lock.Status(); err != nil {
		m.err = err
		return
	}
	if m.pauseState, err = m.pause.Status(); err != nil {
		m.err = err
		return
	}
	if m.active, err = m.session.Active(); err != nil {
		m.err = err
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.TogglePause):
			if m.pauseState.IsPaused {
				m.err = m.pause.Resume()
			} else {
				m.err = m.pause.Pause(nil)
			}
			if m.err == nil {
				m.refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.EndSession):
			if m.active != nil {
				m.err = m.session.End()
				if m.err == nil {
					m.refresh()
				}
			}
			return m, nil
		}
	}
	return m, nil
}
