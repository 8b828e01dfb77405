package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-homedash/components/dashboard"
)

// ToggleEditInput flips the board mode. When Editing is set the command
// only toggles if the current mode differs, which makes retries idempotent.
type ToggleEditInput struct {
	Editing *bool `json:"editing,omitempty"`
}

type modeService interface {
	ToggleEdit(ctx context.Context) dashboard.EditMode
	Session() *dashboard.EditSession
}

// ToggleEditCommand switches between browsing and editing.
type ToggleEditCommand struct {
	service modeService
}

// NewToggleEditCommand creates the command. The service records mode changes.
func NewToggleEditCommand(service modeService) *ToggleEditCommand {
	return &ToggleEditCommand{service: service}
}

var _ gocommand.Commander[ToggleEditInput] = (*ToggleEditCommand)(nil)

// Execute toggles edit mode.
func (c *ToggleEditCommand) Execute(ctx context.Context, msg ToggleEditInput) error {
	if c.service == nil {
		return errors.New("toggle command requires service")
	}
	if msg.Editing != nil && c.service.Session().Editing() == *msg.Editing {
		return nil
	}
	c.service.ToggleEdit(ctx)
	return nil
}
