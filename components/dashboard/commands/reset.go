package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ResetLayoutInput restores the default layout.
type ResetLayoutInput struct{}

type resetService interface {
	ResetLayout(ctx context.Context) ([]string, error)
}

// ResetLayoutCommand replaces the stored layout with the defaults.
type ResetLayoutCommand struct {
	service   resetService
	telemetry Telemetry
}

// NewResetLayoutCommand wires dependencies.
func NewResetLayoutCommand(service resetService, telemetry Telemetry) *ResetLayoutCommand {
	return &ResetLayoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetLayoutInput] = (*ResetLayoutCommand)(nil)

// Execute resets the layout. Reset works in either mode.
func (c *ResetLayoutCommand) Execute(ctx context.Context, _ ResetLayoutInput) error {
	if c.service == nil {
		return errors.New("reset command requires service")
	}
	_, err := c.service.ResetLayout(ctx)
	return rejected(ctx, c.telemetry, "reset", "", err)
}
