package dashboard

import (
	"context"
	"errors"
	"io"
)

const defaultDashboardTemplate = "dashboard"

// Renderer describes the template engine the controller renders through.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// BoardViewer resolves the board for a locale.
type BoardViewer interface {
	View(ctx context.Context, locale string) (BoardView, error)
}

// ControllerOptions configures the HTML controller.
type ControllerOptions struct {
	Service  BoardViewer
	Renderer Renderer
	Template string
}

// Controller renders the board for HTTP handlers and the CLI.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultDashboardTemplate
	}
	return &Controller{opts: opts}
}

// View resolves the board for the locale and returns it to the caller.
func (c *Controller) View(ctx context.Context, locale string) (BoardView, error) {
	if c.opts.Service == nil {
		return BoardView{Frames: []FrameView{}}, nil
	}
	return c.opts.Service.View(ctx, locale)
}

// RenderTemplate renders the board as HTML into out.
func (c *Controller) RenderTemplate(ctx context.Context, locale string, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: renderer not configured")
	}
	board, err := c.View(ctx, locale)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"board":  board,
		"locale": locale,
		"theme":  DefaultTheme(),
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, payload, out)
	return err
}
