package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Red      = lipgloss.Color("#f38ba8")
	Sapphire = lipgloss.Color("#74c7ec")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)

	StatusGood = lipgloss.NewStyle().Foreground(Green).Bold(true)
	StatusOK   = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	StatusBad  = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// ForStatus picks the style matching a posture status string.
func ForStatus(status string) lipgloss.Style {
	switch status {
	case "good":
		return StatusGood
	case "ok":
		return StatusOK
	default:
		return StatusBad
	}
}
