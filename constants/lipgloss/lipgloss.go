package lipgloss

import "github.com/charmbracelet/lipgloss"

var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	Info    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	Gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// BoxStyle frames summaries such as token usage and the proposed message.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)
