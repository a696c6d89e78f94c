// Package tui renders a live sorting line in the terminal.
//
// The Model subscribes to a controller's snapshots and draws both belts, the
// stats panel and the event feed. Key presses are forwarded as controller
// commands; the model never touches the simulator.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wastewise-india/sortline/sim"
)

const (
	defaultLaneWidth = 80
	commandTimeout   = 2 * time.Second
)

// Controller is the subset of live.Controller the model drives.
type Controller interface {
	Start(ctx context.Context) (sim.Snapshot, error)
	Stop(ctx context.Context) (sim.Snapshot, error)
	Reset(ctx context.Context) (ended, fresh sim.Snapshot, err error)
	StepFrame(ctx context.Context) (sim.Snapshot, error)
	Subscribe() (<-chan sim.Snapshot, func())
}

// Model is the root Bubble Tea model.
type Model struct {
	ctrl        Controller
	cfg         sim.LineConfig
	snaps       <-chan sim.Snapshot
	unsubscribe func()

	snap      sim.Snapshot
	laneWidth int
	err       error
	closed    bool
}

// New subscribes to ctrl. cfg supplies the geometry used for drawing.
func New(ctrl Controller, cfg sim.LineConfig) Model {
	snaps, unsubscribe := ctrl.Subscribe()
	return Model{
		ctrl:        ctrl,
		cfg:         cfg,
		snaps:       snaps,
		unsubscribe: unsubscribe,
		laneWidth:   defaultLaneWidth,
	}
}

// Message types for tea.Cmd
type (
	snapshotMsg sim.Snapshot
	closedMsg   struct{}
	errMsg      struct{ err error }
)

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listen()
}

func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.snaps
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// command runs a controller command off the UI goroutine.
func (m Model) command(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return errMsg{err: fn(ctx)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.laneWidth = max(msg.Width-4, 20)
		return m, nil

	case snapshotMsg:
		m.snap = sim.Snapshot(msg)
		return m, m.listen()

	case closedMsg:
		m.closed = true
		return m, tea.Quit

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.unsubscribe()
			return m, tea.Quit
		case key.Matches(msg, keys.Start):
			return m, m.command(func(ctx context.Context) error {
				_, err := m.ctrl.Start(ctx)
				return err
			})
		case key.Matches(msg, keys.Pause):
			return m, m.command(func(ctx context.Context) error {
				_, err := m.ctrl.Stop(ctx)
				return err
			})
		case key.Matches(msg, keys.Reset):
			return m, m.command(func(ctx context.Context) error {
				_, _, err := m.ctrl.Reset(ctx)
				return err
			})
		case key.Matches(msg, keys.Step):
			return m, m.command(func(ctx context.Context) error {
				_, err := m.ctrl.StepFrame(ctx)
				return err
			})
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	status := "PAUSED"
	if m.snap.Running {
		status = "RUNNING"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Dual-belt sorting line  %s  t=%.1fs", status, float64(m.snap.Clock)/1000)))
	b.WriteString("\n\n")

	length := m.cfg.Primary.Length
	b.WriteString("primary    ")
	b.WriteString(renderLane(m.snap.PrimaryItems, length, m.laneWidth, m.cfg.Primary.DetectLo, m.cfg.Primary.DetectHi))
	b.WriteString("\ninspection ")
	b.WriteString(renderLane(m.snap.InspectionItems, length, m.laneWidth))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(renderStats(m.snap.Stats)),
		panelStyle.Render(renderEvents(m.snap.Events)),
	))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("s start • p pause • r reset • n step • q quit"))
	return b.String()
}

func renderStats(s sim.Stats) string {
	lines := []string{
		fmt.Sprintf("Processed  %5d", s.TotalProcessed),
		fmt.Sprintf("Diverted   %5d", s.Diverted),
		fmt.Sprintf("Cleaned    %5d", s.Cleaned),
		fmt.Sprintf("Scrapped   %5d", s.Scrapped),
		fmt.Sprintf("Recovered  %5d", s.Recovered),
		fmt.Sprintf("Recovery   %4d%%", s.RecoveryPercentage),
	}
	if s.Escaped > 0 {
		lines = append(lines, fmt.Sprintf("Escaped    %5d", s.Escaped))
	}
	return strings.Join(lines, "\n")
}

func renderEvents(events []sim.Event) string {
	if len(events) == 0 {
		return helpStyle.Render("no events")
	}
	lines := make([]string, len(events))
	for i, ev := range events {
		lines[i] = fmt.Sprintf("%6.1fs  %s", float64(ev.Clock)/1000, ev.Message)
	}
	return strings.Join(lines, "\n")
}

// Key bindings
var keys = struct {
	Start key.Binding
	Pause key.Binding
	Reset key.Binding
	Step  key.Binding
	Quit  key.Binding
}{
	Start: key.NewBinding(key.WithKeys("s")),
	Pause: key.NewBinding(key.WithKeys("p")),
	Reset: key.NewBinding(key.WithKeys("r")),
	Step:  key.NewBinding(key.WithKeys("n")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
