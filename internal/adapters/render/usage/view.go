package usage

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bnema/codelynx/internal/application"
	"github.com/bnema/codelynx/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	dailyBarWidth = 30
	modelBarWidth = 16
	warnPercent   = 90
)

const approachingLimitWarning = "You are approaching your daily API request limit. Consider raising api_daily_limit if needed."

type RenderOptions struct {
	// Compact drops the model distribution table.
	Compact bool
}

func renderView(stats application.UsageStats, opts RenderOptions, s styles) string {
	record := stats.Stats
	limit := stats.Config.APIDailyLimit
	percent := record.DailyPercent(limit)

	lines := []string{
		s.title.Render("CodeLynx API Usage Statistics"),
		s.header.Render("day: " + dayLabel(record.DailyResetDate)),
	}

	if percent > warnPercent {
		lines = append(lines, s.warning.Render("! "+approachingLimitWarning))
	}

	lines = append(lines,
		s.section.Render("Requests"),
		statLine("total:", formatCount(record.TotalRequests), "since first use", s),
		statLine("daily:", fmt.Sprintf("%s / %s", formatCount(record.DailyRequests), formatCount(uint64(max(limit, 0)))), "daily limit", s),
		lipgloss.JoinHorizontal(lipgloss.Top,
			renderProgressBar(percent, dailyBarWidth, thresholdColor(percent), s),
			" ",
			lipgloss.NewStyle().Foreground(thresholdColor(percent)).Render(fmt.Sprintf("%3.0f%%", percent)),
		),
		s.section.Render("Tokens"),
		statLine("total:", formatCount(record.Tokens.Total), domain.CompactNumber(record.Tokens.Total), s),
		statLine("prompt:", formatCount(record.Tokens.Prompt), "input sent to the API", s),
		statLine("completion:", formatCount(record.Tokens.Completion), "output received", s),
	)

	if opts.Compact {
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render("Model usage"))
	shares := record.ModelShares()
	if len(shares) == 0 {
		lines = append(lines, s.empty.Render("No model usage data available yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, renderModelTable(shares, s))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statLine(label, value, subtitle string, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Width(12).Render(label),
		s.value.Render(value),
		" ",
		s.subtitle.Render("("+subtitle+")"),
	)
}

func renderModelTable(shares []domain.ModelShare, s styles) string {
	rows := make([][]string, 0, len(shares))
	for _, share := range shares {
		rows = append(rows, []string{
			share.Model,
			formatCount(share.Requests),
			fmt.Sprintf("%.1f%%", share.Percent),
			plainBar(share.Percent, modelBarWidth),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.barBracket).
		Headers("Model", "Requests", "Share", "Distribution").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.tableHead
			case col == 3:
				return s.tableBar
			default:
				return s.tableCell
			}
		})

	return t.Render()
}

func renderProgressBar(percent float64, width int, fill lipgloss.Color, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := filledCells(percent, width)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func plainBar(percent float64, width int) string {
	filled := filledCells(percent, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func filledCells(percent float64, width int) int {
	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled < 0 {
		return 0
	}
	if filled > width {
		return width
	}
	return filled
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func dayLabel(date string) string {
	if strings.TrimSpace(date) == "" {
		return "not started"
	}
	return date
}

// formatCount groups digits by thousands.
func formatCount(v uint64) string {
	digits := strconv.FormatUint(v, 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
