package dashboard

import (
	"context"

	core "github.com/goliatone/go-homedash/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// BoardView re-exports the rendered board.
type BoardView = core.BoardView

// WidgetDefinition re-exports catalog entries.
type WidgetDefinition = core.WidgetDefinition

// Snapshot re-exports the provider input data.
type Snapshot = core.Snapshot

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Start builds a service and loads its layout in one step.
func Start(ctx context.Context, opts Options) *Service {
	svc := core.NewService(opts)
	svc.Start(ctx)
	return svc
}
