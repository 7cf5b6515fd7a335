// Package tui renders a live terminal monitor for running generations.
// It is fed the same events a GenerationListener receives.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/boxforge/internal/ports/primary"
)

// tailWidth is how much of each buffer the monitor shows.
const tailWidth = 60

// EventMsg wraps a generation event for the Bubble Tea loop.
type EventMsg primary.GenerationEvent

type doneMsg struct {
	outcome *primary.GenerationOutcome
	err     error
}

type targetState int

const (
	stateWaiting targetState = iota
	stateGenerating
	stateComplete
	stateFailed
)

type row struct {
	state   targetState
	bytes   int
	chunks  int
	tail    string
	message string
}

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	tail    lipgloss.Style
	summary lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:   lipgloss.NewStyle().Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		tail:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Italic(true),
		summary: lipgloss.NewStyle().MarginTop(1),
	}
}

// Model is the monitor state. Labels maps target ids to display names.
type Model struct {
	title   string
	labels  map[string]string
	order   []string
	rows    map[string]*row
	spinner spinner.Model
	style   styles

	requestID   string
	done        bool
	interrupted bool
	outcome     *primary.GenerationOutcome
	err         error
}

// New creates a monitor for the given targets.
func New(title string, targets []string, labels map[string]string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{
		title:   title,
		labels:  labels,
		rows:    make(map[string]*row),
		spinner: sp,
		style:   defaultStyles(),
	}
	for _, t := range targets {
		m.track(t)
	}
	return m
}

func (m *Model) track(target string) *row {
	r, ok := m.rows[target]
	if !ok {
		r = &row{}
		m.rows[target] = r
		m.order = append(m.order, target)
	}
	return r
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.interrupted = true
			return m, tea.Quit
		}
	case EventMsg:
		m.apply(primary.GenerationEvent(msg))
		return m, nil
	case doneMsg:
		m.done = true
		m.outcome = msg.outcome
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(ev primary.GenerationEvent) {
	if ev.RequestID != "" {
		m.requestID = ev.RequestID
	}
	switch ev.Type {
	case primary.EventStarted:
		for _, t := range ev.Targets {
			r := m.track(t)
			*r = row{state: stateGenerating}
		}
	case primary.EventChunk:
		for _, t := range ev.Targets {
			r := m.track(t)
			r.state = stateGenerating
			r.bytes += len(ev.Text)
			r.chunks++
			r.tail = tail(r.tail+ev.Text, tailWidth)
		}
	case primary.EventComplete:
		for i, t := range ev.Targets {
			r := m.track(t)
			r.state = stateComplete
			if i < len(ev.Versions) {
				r.bytes = len(ev.Versions[i].Code)
			}
		}
	case primary.EventFailed:
		for _, t := range ev.Targets {
			r := m.track(t)
			r.state = stateFailed
			r.message = ev.Message
		}
	}
}

// tail returns the last n runes of s on one line.
func tail(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// View renders the monitor.
func (m Model) View() string {
	var b strings.Builder
	header := m.title
	if m.requestID != "" {
		header += " " + m.style.dim.Render(m.requestID)
	}
	b.WriteString(m.style.title.Render(header))
	b.WriteString("\n\n")

	for _, t := range m.order {
		r := m.rows[t]
		var icon string
		switch r.state {
		case stateComplete:
			icon = m.style.ok.Render("✓")
		case stateFailed:
			icon = m.style.failed.Render("✗")
		case stateGenerating:
			icon = m.spinner.View()
		default:
			icon = m.style.dim.Render("·")
		}
		label := t
		if l, ok := m.labels[t]; ok && l != "" {
			label = l
		}
		fmt.Fprintf(&b, "%s %s %s", icon, m.style.label.Render(label), m.style.dim.Render(fmt.Sprintf("%d bytes", r.bytes)))
		switch {
		case r.state == stateFailed:
			fmt.Fprintf(&b, "  %s", m.style.failed.Render(r.message))
		case r.tail != "" && r.state == stateGenerating:
			fmt.Fprintf(&b, "  %s", m.style.tail.Render("…"+r.tail))
		}
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(m.style.summary.Render(m.style.failed.Render("Error: " + m.err.Error())))
		b.WriteString("\n")
	case m.outcome != nil && m.outcome.Failed:
		b.WriteString(m.style.summary.Render(m.style.failed.Render(m.outcome.Message)))
		b.WriteString("\n")
	case m.outcome != nil:
		b.WriteString(m.style.summary.Render(m.style.ok.Render(fmt.Sprintf("Recorded %d version(s).", len(m.outcome.Versions)))))
		b.WriteString("\n")
	case !m.done:
		b.WriteString(m.style.summary.Render(m.style.dim.Render("q to stop watching")))
		b.WriteString("\n")
	}
	return b.String()
}

// RunFunc starts a generation that reports to listener and returns its
// outcome.
type RunFunc func(ctx context.Context, listener primary.GenerationListener) (*primary.GenerationOutcome, error)

// Watch runs fn while rendering the monitor and returns fn's result. When
// the user stops watching, ctx passed to fn is cancelled.
func Watch(ctx context.Context, m Model, fn RunFunc, opts ...tea.ProgramOption) (*primary.GenerationOutcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append(opts, tea.WithContext(ctx))
	p := tea.NewProgram(m, opts...)

	type result struct {
		outcome *primary.GenerationOutcome
		err     error
	}
	results := make(chan result, 1)
	go func() {
		outcome, err := fn(ctx, func(ev primary.GenerationEvent) { p.Send(EventMsg(ev)) })
		results <- result{outcome, err}
		p.Send(doneMsg{outcome: outcome, err: err})
	}()

	final, runErr := p.Run()
	cancel()
	res := <-results

	if fm, ok := final.(Model); ok && fm.interrupted && res.err == nil && res.outcome == nil {
		return nil, context.Canceled
	}
	if res.err != nil {
		return nil, res.err
	}
	if runErr != nil && res.outcome == nil {
		return nil, fmt.Errorf("failed to run monitor: %w", runErr)
	}
	return res.outcome, nil
}
