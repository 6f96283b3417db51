package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/videolingo/vlsetup/internal/core/mirror"
)

var (
	mirrorSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	mirrorFastStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mirrorDeadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// mirrorRaceState is shared between the measuring goroutine and the TUI
type mirrorRaceState struct {
	mu      sync.Mutex
	results []mirror.Result
	done    bool
}

type mirrorTickMsg time.Time

func mirrorTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return mirrorTickMsg(t)
	})
}

type mirrorModel struct {
	spinner spinner.Model
	state   *mirrorRaceState
	done    bool
	results []mirror.Result
}

func newMirrorModel(state *mirrorRaceState) mirrorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = mirrorSpinnerStyle
	return mirrorModel{spinner: s, state: state}
}

func (m mirrorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, mirrorTickCmd())
}

func (m mirrorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case mirrorTickMsg:
		m.state.mu.Lock()
		done := m.state.done
		results := m.state.results
		m.state.mu.Unlock()

		if done {
			m.done = true
			m.results = results
			return m, tea.Quit
		}
		return m, mirrorTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m mirrorModel) View() string {
	if m.done {
		return "\n" + renderMirrorTable(m.results) + "\n"
	}

	return fmt.Sprintf("\n %s Measuring %d PyPI mirrors...\n\n %s\n",
		m.spinner.View(),
		len(mirror.Candidates),
		helpStyle.Render("press q to cancel"))
}

// runMirrorTUI measures all candidates behind a spinner and returns the
// results. A nil error with nil results means the user cancelled.
func runMirrorTUI(ctx context.Context) ([]mirror.Result, error) {
	state := &mirrorRaceState{}

	go func() {
		results := mirror.Measure(ctx, mirror.Candidates)
		state.mu.Lock()
		state.results = results
		state.done = true
		state.mu.Unlock()
	}()

	p := tea.NewProgram(newMirrorModel(state))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := finalModel.(mirrorModel)
	if !m.done {
		return nil, nil
	}
	return m.results, nil
}

// renderMirrorTable lists the results fastest first, one line each
func renderMirrorTable(results []mirror.Result) string {
	sorted := mirror.Sorted(results)

	width := 0
	for _, r := range sorted {
		if w := runewidth.StringWidth(r.Mirror.Name); w > width {
			width = w
		}
	}

	var b strings.Builder
	for i, r := range sorted {
		b.WriteString("  " + padRight(r.Mirror.Name, width) + "  ")
		switch {
		case r.Err != nil:
			b.WriteString(mirrorDeadStyle.Render("unreachable"))
		case i == 0:
			b.WriteString(mirrorFastStyle.Render(fmt.Sprintf("%4d ms  ← fastest", r.Latency.Milliseconds())))
		default:
			b.WriteString(fmt.Sprintf("%4d ms", r.Latency.Milliseconds()))
		}
		b.WriteString("\n")
	}
	return b.String()
}
