// Package tui renders the board in a terminal with bubbletea.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/goliatone/go-homedash/components/dashboard"
)

// Board is the slice of the dashboard service the terminal UI drives.
type Board interface {
	View(ctx context.Context, locale string) (dashboard.BoardView, error)
	ToggleEdit(ctx context.Context) dashboard.EditMode
	AddWidget(ctx context.Context, id string) ([]string, error)
	RemoveWidget(ctx context.Context, id string) ([]string, error)
	MoveWidget(ctx context.Context, id string, direction dashboard.Direction) ([]string, error)
	RefreshWidget(ctx context.Context, id string) (<-chan struct{}, error)
	ResetLayout(ctx context.Context) ([]string, error)
}

// Options configures the model.
type Options struct {
	Board  Board
	Locale string
	// Events re-renders the board whenever the service publishes. Optional.
	Events <-chan dashboard.WidgetEvent
	Theme  dashboard.Theme
}

type eventMsg struct {
	event dashboard.WidgetEvent
	ok    bool
}

// Model is the bubbletea model for the board.
type Model struct {
	ctx    context.Context
	board  Board
	locale string
	events <-chan dashboard.WidgetEvent
	styles styles

	view   dashboard.BoardView
	cursor int
	status string
	width  int
}

// New builds the model and renders the initial board.
func New(ctx context.Context, opts Options) Model {
	theme := opts.Theme
	if theme.Name == "" {
		theme = dashboard.DefaultTheme()
	}
	m := Model{
		ctx:    ctx,
		board:  opts.Board,
		locale: opts.Locale,
		events: opts.Events,
		styles: newStyles(theme),
		width:  80,
	}
	m.reload()
	return m
}

// Init starts listening for board events.
func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		return eventMsg{event: event, ok: ok}
	}
}

// Update handles key presses and board events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case eventMsg:
		if !msg.ok {
			return m, nil
		}
		m.reload()
		return m, m.waitForEvent()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.Frames)-1 {
			m.cursor++
		}
	case "e":
		mode := m.board.ToggleEdit(m.ctx)
		m.status = "mode: " + mode.String()
	case "x":
		if frame, ok := m.selected(); ok {
			_, err := m.board.RemoveWidget(m.ctx, frame.ID)
			m.report(err, "removed "+frame.ID)
		}
	case "h", "left":
		m.move(dashboard.DirectionBefore)
	case "l", "right":
		m.move(dashboard.DirectionAfter)
	case "a":
		if !m.view.Editing {
			m.report(dashboard.ErrNotEditing, "")
			break
		}
		if len(m.view.AddOptions) == 0 {
			m.status = "nothing to add"
			break
		}
		id := m.view.AddOptions[0].ID
		_, err := m.board.AddWidget(m.ctx, id)
		m.report(err, "added "+id)
	case "r":
		if frame, ok := m.selected(); ok {
			_, err := m.board.RefreshWidget(m.ctx, frame.ID)
			m.report(err, "refreshing "+frame.ID)
		}
	case "R":
		_, err := m.board.ResetLayout(m.ctx)
		m.report(err, "layout reset")
	}
	m.reload()
	return m, nil
}

func (m *Model) move(direction dashboard.Direction) {
	frame, ok := m.selected()
	if !ok {
		return
	}
	_, err := m.board.MoveWidget(m.ctx, frame.ID, direction)
	m.report(err, "")
	if err != nil {
		return
	}
	if direction == dashboard.DirectionBefore && m.cursor > 0 {
		m.cursor--
	}
	if direction == dashboard.DirectionAfter && m.cursor < len(m.view.Frames)-1 {
		m.cursor++
	}
}

func (m *Model) report(err error, ok string) {
	switch {
	case err == nil:
		m.status = ok
	case errors.Is(err, dashboard.ErrNotEditing):
		m.status = "press e to edit the layout"
	case errors.Is(err, dashboard.ErrWidgetInert):
		m.status = "widgets are inert while editing"
	case errors.Is(err, dashboard.ErrRefreshUnsupported):
		m.status = "this widget cannot refresh"
	default:
		m.status = err.Error()
	}
}

func (m Model) selected() (dashboard.FrameView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Frames) {
		return dashboard.FrameView{}, false
	}
	return m.view.Frames[m.cursor], true
}

func (m *Model) reload() {
	view, err := m.board.View(m.ctx, m.locale)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.view = view
	if m.cursor >= len(view.Frames) {
		m.cursor = len(view.Frames) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
