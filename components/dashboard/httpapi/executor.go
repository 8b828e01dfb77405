package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-homedash/components/dashboard"
	"github.com/goliatone/go-homedash/components/dashboard/commands"
	"github.com/goliatone/go-homedash/components/dashboard/queries"
)

// Executor is the transport-neutral surface router adapters call into.
type Executor interface {
	AddWidget(ctx context.Context, input commands.AddWidgetInput) error
	RemoveWidget(ctx context.Context, input commands.RemoveWidgetInput) error
	MoveWidget(ctx context.Context, input commands.MoveWidgetInput) error
	ToggleEdit(ctx context.Context, input commands.ToggleEditInput) error
	RefreshWidget(ctx context.Context, input commands.RefreshWidgetInput) error
	ResetLayout(ctx context.Context, input commands.ResetLayoutInput) error
	Board(ctx context.Context, input queries.BoardInput) (dashboard.BoardView, error)
	Catalog(ctx context.Context, input queries.CatalogInput) ([]queries.CatalogEntry, error)
}

var errMissingCommander = errors.New("httpapi: commander not configured")

// CommandExecutor adapts commanders and queriers to Executor.
type CommandExecutor struct {
	AddCommander     gocommand.Commander[commands.AddWidgetInput]
	RemoveCommander  gocommand.Commander[commands.RemoveWidgetInput]
	MoveCommander    gocommand.Commander[commands.MoveWidgetInput]
	ToggleCommander  gocommand.Commander[commands.ToggleEditInput]
	RefreshCommander gocommand.Commander[commands.RefreshWidgetInput]
	ResetCommander   gocommand.Commander[commands.ResetLayoutInput]
	BoardQuerier     gocommand.Querier[queries.BoardInput, dashboard.BoardView]
	CatalogQuerier   gocommand.Querier[queries.CatalogInput, []queries.CatalogEntry]
}

// NewCommandExecutor wires every command and query against the service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		AddCommander:     commands.NewAddWidgetCommand(service, telemetry),
		RemoveCommander:  commands.NewRemoveWidgetCommand(service, telemetry),
		MoveCommander:    commands.NewMoveWidgetCommand(service, telemetry),
		ToggleCommander:  commands.NewToggleEditCommand(service),
		RefreshCommander: commands.NewRefreshWidgetCommand(service, telemetry),
		ResetCommander:   commands.NewResetLayoutCommand(service, telemetry),
		BoardQuerier:     queries.NewBoardQuery(service),
		CatalogQuerier:   queries.NewCatalogQuery(service),
	}
}

// Handlers exposes the same commanders as net/http handlers.
func (e *CommandExecutor) Handlers() *Handlers {
	return &Handlers{
		Add:     e.AddCommander,
		Remove:  e.RemoveCommander,
		Move:    e.MoveCommander,
		Toggle:  e.ToggleCommander,
		Refresh: e.RefreshCommander,
		Reset:   e.ResetCommander,
		Board:   e.BoardQuerier,
		Catalog: e.CatalogQuerier,
	}
}

func (e *CommandExecutor) AddWidget(ctx context.Context, input commands.AddWidgetInput) error {
	return execute(ctx, e.AddCommander, input)
}

func (e *CommandExecutor) RemoveWidget(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, e.RemoveCommander, input)
}

func (e *CommandExecutor) MoveWidget(ctx context.Context, input commands.MoveWidgetInput) error {
	return execute(ctx, e.MoveCommander, input)
}

func (e *CommandExecutor) ToggleEdit(ctx context.Context, input commands.ToggleEditInput) error {
	return execute(ctx, e.ToggleCommander, input)
}

func (e *CommandExecutor) RefreshWidget(ctx context.Context, input commands.RefreshWidgetInput) error {
	return execute(ctx, e.RefreshCommander, input)
}

func (e *CommandExecutor) ResetLayout(ctx context.Context, input commands.ResetLayoutInput) error {
	return execute(ctx, e.ResetCommander, input)
}

func (e *CommandExecutor) Board(ctx context.Context, input queries.BoardInput) (dashboard.BoardView, error) {
	if e.BoardQuerier == nil {
		return dashboard.BoardView{}, errMissingCommander
	}
	return e.BoardQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Catalog(ctx context.Context, input queries.CatalogInput) ([]queries.CatalogEntry, error) {
	if e.CatalogQuerier == nil {
		return nil, errMissingCommander
	}
	return e.CatalogQuerier.Query(ctx, input)
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errMissingCommander
	}
	return cmd.Execute(ctx, msg)
}
