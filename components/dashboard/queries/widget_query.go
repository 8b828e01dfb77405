package queries

import (
	"context"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-homedash/components/dashboard"
)

// WidgetInput identifies a single frame on the board.
type WidgetInput struct {
	WidgetID string `json:"widget_id"`
	Locale   string `json:"locale"`
}

// WidgetQuery fetches one frame from the board view.
type WidgetQuery struct {
	service boardService
}

// NewWidgetQuery builds the query.
func NewWidgetQuery(service boardService) *WidgetQuery {
	return &WidgetQuery{service: service}
}

var _ gocommand.Querier[WidgetInput, dashboard.FrameView] = (*WidgetQuery)(nil)

// Query returns the frame for the widget or ErrUnknownWidget when it is not
// on the board.
func (q *WidgetQuery) Query(ctx context.Context, input WidgetInput) (dashboard.FrameView, error) {
	view, err := q.service.View(ctx, input.Locale)
	if err != nil {
		return dashboard.FrameView{}, err
	}
	for _, frame := range view.Frames {
		if frame.ID == input.WidgetID {
			return frame, nil
		}
	}
	return dashboard.FrameView{}, fmt.Errorf("%w: %s", dashboard.ErrUnknownWidget, input.WidgetID)
}

// CatalogInput filters catalog entries.
type CatalogInput struct {
	// UnusedOnly limits the result to widgets not currently on the board.
	UnusedOnly bool   `json:"unused_only"`
	Locale     string `json:"locale"`
}

// CatalogEntry is a catalog definition with its title resolved.
type CatalogEntry struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Span        int    `json:"span"`
	OnBoard     bool   `json:"on_board"`
}

type catalogService interface {
	Catalog() dashboard.Catalog
	Layout() *dashboard.LayoutStore
}

// CatalogQuery lists the widget catalog.
type CatalogQuery struct {
	service catalogService
}

// NewCatalogQuery builds the query.
func NewCatalogQuery(service catalogService) *CatalogQuery {
	return &CatalogQuery{service: service}
}

var _ gocommand.Querier[CatalogInput, []CatalogEntry] = (*CatalogQuery)(nil)

// Query returns catalog entries in registration order.
func (q *CatalogQuery) Query(_ context.Context, input CatalogInput) ([]CatalogEntry, error) {
	layout := q.service.Layout()
	defs := q.service.Catalog().Definitions()
	if input.UnusedOnly {
		defs = layout.UnusedCatalogEntries()
	}
	out := make([]CatalogEntry, 0, len(defs))
	for _, def := range defs {
		out = append(out, CatalogEntry{
			ID:          def.ID,
			Kind:        string(def.Kind),
			Title:       def.TitleForLocale(input.Locale),
			Description: def.Description,
			Span:        def.Span,
			OnBoard:     layout.Contains(def.ID),
		})
	}
	return out, nil
}
