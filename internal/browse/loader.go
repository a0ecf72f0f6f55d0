package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/feedwatch/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ErrCancelled is returned by RunLoader when the user aborts the fetch.
var ErrCancelled = errors.New("cancelled")

type fetchDoneMsg struct {
	records []model.Record
	err     error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label   string
	fetchFn func(ctx context.Context) ([]model.Record, error)
	timeout time.Duration
	frame   int
	result  []model.Record
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doFetch(), m.tick())
}

func (m loaderModel) doFetch() tea.Cmd {
	fetchFn := m.fetchFn
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		records, err := fetchFn(ctx)
		return fetchDoneMsg{records: records, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.result = msg.records
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s Fetching %s...\n", spinner, m.label)
}

// RunLoader shows a spinner while fetchFn runs. It renders inline (no alt
// screen). timeout bounds the whole fetch, retries included.
func RunLoader(label string, timeout time.Duration, fetchFn func(ctx context.Context) ([]model.Record, error)) ([]model.Record, error) {
	m := loaderModel{
		label:   label,
		fetchFn: fetchFn,
		timeout: timeout,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
