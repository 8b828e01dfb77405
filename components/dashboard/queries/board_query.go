package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-homedash/components/dashboard"
)

// BoardInput selects the locale the board is rendered in.
type BoardInput struct {
	Locale string `json:"locale"`
}

type boardService interface {
	View(ctx context.Context, locale string) (dashboard.BoardView, error)
}

// BoardQuery resolves the full board view.
type BoardQuery struct {
	service boardService
}

// NewBoardQuery builds the query.
func NewBoardQuery(service boardService) *BoardQuery {
	return &BoardQuery{service: service}
}

var _ gocommand.Querier[BoardInput, dashboard.BoardView] = (*BoardQuery)(nil)

// Query renders the board for the requested locale.
func (q *BoardQuery) Query(ctx context.Context, input BoardInput) (dashboard.BoardView, error) {
	return q.service.View(ctx, input.Locale)
}
