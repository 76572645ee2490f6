package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// elapsedAfter is how long a call runs before the spinner starts showing a seconds counter.
const elapsedAfter = 2 * time.Second

type turnDoneMsg struct{}

// turnSpinnerModel only draws; the provider call runs outside the program and reports through turnDoneMsg.
type turnSpinnerModel struct {
	spinner spinner.Model
	label   string
	started time.Time
	now     func() time.Time
	done    bool
}

func newTurnSpinnerModel(label string, now func() time.Time) turnSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#f05a28"))),
	)

	return turnSpinnerModel{
		spinner: s,
		label:   label,
		started: now(),
		now:     now,
	}
}

func (m turnSpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m turnSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case turnDoneMsg:
		m.done = true
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m turnSpinnerModel) View() string {
	if m.done {
		return ""
	}

	view := m.spinner.View() + " " + m.label
	if elapsed := m.now().Sub(m.started); elapsed >= elapsedAfter {
		view += faintStyle.Render(fmt.Sprintf(" %ds", int(elapsed.Seconds())))
	}
	return view
}

// wait runs work behind a spinner on interactive terminals and directly otherwise.
// It always returns after work has finished, so callers may read what work wrote.
func (a *app) wait(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	if !a.interactive {
		return work(ctx)
	}

	done := make(chan error, 1)
	p := tea.NewProgram(
		newTurnSpinnerModel(label, time.Now),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	go func() {
		done <- work(ctx)
		p.Send(turnDoneMsg{})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		a.logger.Debug("spinner stopped", "err", err)
	}

	return <-done
}
