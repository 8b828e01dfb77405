package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// AddWidgetInput names the catalog entry to append to the board.
type AddWidgetInput struct {
	WidgetID string `json:"widget_id"`
}

type addService interface {
	AddWidget(ctx context.Context, id string) ([]string, error)
}

// AddWidgetCommand appends a catalog widget to the end of the layout.
type AddWidgetCommand struct {
	service   addService
	telemetry Telemetry
}

// NewAddWidgetCommand creates the command.
func NewAddWidgetCommand(service addService, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddWidgetInput] = (*AddWidgetCommand)(nil)

// Execute appends the widget. The board must be in edit mode.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg AddWidgetInput) error {
	if c.service == nil {
		return errors.New("add command requires service")
	}
	if msg.WidgetID == "" {
		return rejected(ctx, c.telemetry, "add", "", errors.New("add command requires widget id"))
	}
	_, err := c.service.AddWidget(ctx, msg.WidgetID)
	return rejected(ctx, c.telemetry, "add", msg.WidgetID, err)
}
