package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshWidgetInput re-triggers a widget's content fetch. With Wait set the
// command blocks until the fetch settles or ctx ends.
type RefreshWidgetInput struct {
	WidgetID string `json:"widget_id"`
	Wait     bool   `json:"wait"`
}

type refreshService interface {
	RefreshWidget(ctx context.Context, id string) (<-chan struct{}, error)
}

// RefreshWidgetCommand restarts the fetch cycle of a refreshable widget.
type RefreshWidgetCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refreshService, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute triggers the refresh.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.WidgetID == "" {
		return rejected(ctx, c.telemetry, "refresh", "", errors.New("refresh command requires widget id"))
	}
	done, err := c.service.RefreshWidget(ctx, msg.WidgetID)
	if err != nil {
		return rejected(ctx, c.telemetry, "refresh", msg.WidgetID, err)
	}
	if !msg.Wait {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
