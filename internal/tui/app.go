package tui

import (
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/webshim/internal/ipc"
)

type tickMsg time.Time

// snapshotMsg carries one poll result.
type snapshotMsg struct {
	status *ipc.StatusData
	views  *ipc.ViewsData
	err    error
}

type closeSentMsg struct{ err error }

// model is the root bubbletea model for the monitor.
type model struct {
	src     Source
	refresh time.Duration

	status    *ipc.StatusData
	views     []ipc.ViewInfo
	connected bool
	lastError string
	notice    string

	// Frame rate over the last refresh window.
	lastFrames uint64
	lastPoll   time.Time
	fps        float64

	width  int
	height int
}

func newModel(src Source, refresh time.Duration) model {
	return model{
		src:     src,
		refresh: refresh,
	}
}

func (m model) poll() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		st, err := src.GetStatus()
		if err != nil {
			return snapshotMsg{err: err}
		}
		views, err := src.ListViews()
		return snapshotMsg{status: st, views: views, err: err}
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.poll(), m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.poll()
		case "x":
			src := m.src
			return m, func() tea.Msg {
				return closeSentMsg{err: src.Close()}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(m.poll(), m.tick())

	case snapshotMsg:
		m.apply(msg, time.Now())

	case closeSentMsg:
		if msg.err != nil {
			m.lastError = msg.err.Error()
		} else {
			m.notice = "close requested"
		}
	}
	return m, nil
}

func (m *model) apply(msg snapshotMsg, now time.Time) {
	if msg.status == nil {
		m.connected = false
		m.status = nil
		m.views = nil
		m.fps = 0
		if msg.err != nil {
			m.lastError = msg.err.Error()
		}
		return
	}

	m.connected = true
	m.lastError = ""
	if msg.err != nil {
		m.lastError = msg.err.Error()
	}
	if !m.lastPoll.IsZero() && msg.status.Frames >= m.lastFrames {
		if dt := now.Sub(m.lastPoll).Seconds(); dt > 0 {
			m.fps = float64(msg.status.Frames-m.lastFrames) / dt
		}
	}
	m.lastFrames = msg.status.Frames
	m.lastPoll = now
	m.status = msg.status
	if msg.views != nil {
		m.views = msg.views.Views
	}
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.status, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.status == nil {
		content = renderPlaceholder("waiting for webshim...", m.width, contentHeight)
	} else {
		content = renderDetails(m.status, m.views, m.fps, m.width)
	}
	if m.lastError != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, errStyle.Render(m.lastError))
	} else if m.notice != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, okStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		content,
		helpBar,
	)
}
