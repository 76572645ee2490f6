package usage

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("#f05a28")
	colorWarning = lipgloss.Color("#ffb800")
	colorError   = lipgloss.Color("#ff4d4f")
)

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	label      lipgloss.Style
	value      lipgloss.Style
	subtitle   lipgloss.Style
	section    lipgloss.Style
	warning    lipgloss.Style
	empty      lipgloss.Style
	barBracket lipgloss.Style
	barEmpty   lipgloss.Style
	tableHead  lipgloss.Style
	tableCell  lipgloss.Style
	tableBar   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		value:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		subtitle:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		section:    lipgloss.NewStyle().MarginTop(1).Bold(true),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
		empty:      lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		tableHead:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1),
		tableCell:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1),
		tableBar:   lipgloss.NewStyle().Foreground(colorAccent).Padding(0, 1),
	}
}

// thresholdColor follows the daily-limit bands: accent, then warning above 70%, error above 90%.
func thresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent > 90:
		return colorError
	case percent > 70:
		return colorWarning
	default:
		return colorAccent
	}
}
