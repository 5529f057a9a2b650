package main

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(6))

// spinnerStopMsg ends the spinner program
type spinnerStopMsg struct{}

// spinnerModel shows a spinner next to a label while a request runs
type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return spinnerModel{spinner: sp, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerStopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label
}

// startSpinner animates label on w until the returned func is called.
// It does nothing when enabled is false.
func startSpinner(w io.Writer, label string, enabled bool) func() {
	if !enabled {
		return func() {}
	}

	p := tea.NewProgram(newSpinnerModel(label),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		p.Run()
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.Send(spinnerStopMsg{})
			<-finished
		})
	}
}
