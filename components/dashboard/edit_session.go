package dashboard

import (
	"context"
	"errors"
	"sync"
)

// ErrNotEditing is returned when a layout mutation is attempted outside edit mode.
var ErrNotEditing = errors.New("dashboard: layout changes require edit mode")

// EditMode is the two-state interaction toggle. It is never persisted.
type EditMode int

const (
	ModeBrowsing EditMode = iota
	ModeEditing
)

func (m EditMode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "browsing"
}

// EditSession gates which layout mutations are reachable from the interface.
type EditSession struct {
	layout *LayoutStore

	mu   sync.RWMutex
	mode EditMode
}

// NewEditSession starts in browsing mode.
func NewEditSession(layout *LayoutStore) *EditSession {
	return &EditSession{layout: layout, mode: ModeBrowsing}
}

// Mode returns the current mode.
func (s *EditSession) Mode() EditMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Editing reports whether the session is in edit mode.
func (s *EditSession) Editing() bool {
	return s.Mode() == ModeEditing
}

// Toggle flips the mode unconditionally and returns the new one. Leaving edit
// mode keeps every change made while editing.
func (s *EditSession) Toggle() EditMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeEditing {
		s.mode = ModeBrowsing
	} else {
		s.mode = ModeEditing
	}
	return s.mode
}

// Editor hands out the layout mutation surface. It is only available while editing.
func (s *EditSession) Editor() (*LayoutEditor, bool) {
	if !s.Editing() {
		return nil, false
	}
	return &LayoutEditor{session: s}, true
}

// LayoutEditor exposes add/remove/move. Every call re-checks the session so a
// handle kept after leaving edit mode cannot mutate the layout.
type LayoutEditor struct {
	session *EditSession
}

// Append adds a catalog entry to the end of the layout.
func (e *LayoutEditor) Append(ctx context.Context, id string) ([]string, error) {
	if !e.session.Editing() {
		return nil, ErrNotEditing
	}
	return e.session.layout.Append(ctx, id)
}

// Remove deletes a widget from the layout.
func (e *LayoutEditor) Remove(ctx context.Context, id string) ([]string, error) {
	if !e.session.Editing() {
		return nil, ErrNotEditing
	}
	return e.session.layout.Remove(ctx, id)
}

// MoveAdjacent swaps the widget at index with its neighbour.
func (e *LayoutEditor) MoveAdjacent(ctx context.Context, index int, direction Direction) ([]string, error) {
	if !e.session.Editing() {
		return nil, ErrNotEditing
	}
	return e.session.layout.MoveAdjacent(ctx, index, direction)
}

// AddOptions lists catalog entries that can still be added.
func (e *LayoutEditor) AddOptions() []WidgetDefinition {
	if !e.session.Editing() {
		return nil
	}
	return e.session.layout.UnusedCatalogEntries()
}
