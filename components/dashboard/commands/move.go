package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-homedash/components/dashboard"
)

// MoveWidgetInput swaps a widget with its neighbor. Direction accepts
// "before"/"after" and their aliases.
type MoveWidgetInput struct {
	WidgetID  string `json:"widget_id"`
	Direction string `json:"direction"`
}

type moveService interface {
	MoveWidget(ctx context.Context, id string, direction dashboard.Direction) ([]string, error)
}

// MoveWidgetCommand shifts a widget one slot in the layout.
type MoveWidgetCommand struct {
	service   moveService
	telemetry Telemetry
}

// NewMoveWidgetCommand creates the command.
func NewMoveWidgetCommand(service moveService, telemetry Telemetry) *MoveWidgetCommand {
	return &MoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveWidgetInput] = (*MoveWidgetCommand)(nil)

// Execute moves the widget. Moving past either edge leaves the layout as is.
func (c *MoveWidgetCommand) Execute(ctx context.Context, msg MoveWidgetInput) error {
	if c.service == nil {
		return errors.New("move command requires service")
	}
	if msg.WidgetID == "" {
		return rejected(ctx, c.telemetry, "move", "", errors.New("move command requires widget id"))
	}
	direction, err := dashboard.ParseDirection(msg.Direction)
	if err != nil {
		return rejected(ctx, c.telemetry, "move", msg.WidgetID, err)
	}
	_, err = c.service.MoveWidget(ctx, msg.WidgetID, direction)
	return rejected(ctx, c.telemetry, "move", msg.WidgetID, err)
}
