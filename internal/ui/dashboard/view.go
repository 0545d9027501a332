package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"posturetrack/internal/modules/stream/domain"
	"posturetrack/internal/ui/theme"
)

const historySize = 10

// ─── messages ────────────────────────────────────────────────────────────────

type ConnectedMsg struct {
	Client *Client
	Err    error
}

type EventMsg struct {
	Event domain.StatusEvent
}

type DisconnectedMsg struct {
	Err error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	url       string
	client    *Client
	connected bool
	lastErr   error
	latest    *domain.StatusEvent
	history   []domain.StatusEvent
	width     int
	height    int
}

func New(url string) Model {
	return Model{url: url}
}

func (m Model) Init() tea.Cmd {
	return m.connectCmd()
}

func (m Model) connectCmd() tea.Cmd {
	url := m.url
	return func() tea.Msg {
		client, err := Dial(url)
		return ConnectedMsg{Client: client, Err: err}
	}
}

func (m Model) waitForEventCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		select {
		case event, ok := <-client.Events():
			if !ok {
				return DisconnectedMsg{Err: <-client.Errs()}
			}
			return EventMsg{Event: event}
		case err := <-client.Errs():
			return DisconnectedMsg{Err: err}
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.client != nil {
				_ = m.client.Close()
			}
			return m, tea.Quit
		}

	case ConnectedMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err
			return m, tea.Quit
		}
		m.client = msg.Client
		m.connected = true
		return m, m.waitForEventCmd()

	case EventMsg:
		event := msg.Event
		m.latest = &event
		m.history = append([]domain.StatusEvent{event}, m.history...)
		if len(m.history) > historySize {
			m.history = m.history[:historySize]
		}
		return m, m.waitForEventCmd()

	case DisconnectedMsg:
		m.connected = false
		m.lastErr = msg.Err
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("PostureTrack"))
	b.WriteString("  ")
	if m.connected {
		b.WriteString(theme.Muted.Render("live — " + m.url))
	} else if m.lastErr != nil {
		b.WriteString(theme.StatusBad.Render("disconnected: " + m.lastErr.Error()))
	} else {
		b.WriteString(theme.Muted.Render("connecting to " + m.url + " ..."))
	}
	b.WriteString("\n\n")

	if m.latest == nil {
		b.WriteString(theme.Pane.Render(theme.Muted.Render("waiting for the first posture update")))
	} else {
		status := strings.ToUpper(m.latest.Status)
		banner := lipgloss.JoinVertical(lipgloss.Left,
			theme.ForStatus(m.latest.Status).Render("POSTURE: "+status),
			theme.Muted.Render(fmt.Sprintf("record #%d at %s", m.latest.ID, shortTime(m.latest.Timestamp))),
		)
		b.WriteString(theme.Pane.Render(banner))
	}
	b.WriteString("\n\n")

	if len(m.history) > 0 {
		b.WriteString(theme.Title.Render("Recent"))
		b.WriteString("\n")
		for _, event := range m.history {
			line := fmt.Sprintf("%s  #%d  %s",
				theme.ForStatus(event.Status).Render(fmt.Sprintf("%-4s", event.Status)),
				event.ID,
				theme.Muted.Render(shortTime(event.Timestamp)),
			)
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(theme.Muted.Render("q: quit"))
	return theme.App.Render(b.String())
}

func shortTime(raw string) string {
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return ts.Local().Format("15:04:05")
}

// Run starts the dashboard program and blocks until it exits.
func Run(url string) error {
	program := tea.NewProgram(New(url), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
