package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-homedash/components/dashboard"
	"github.com/goliatone/go-homedash/components/dashboard/commands"
	"github.com/goliatone/go-homedash/components/dashboard/httpapi"
	"github.com/goliatone/go-homedash/components/dashboard/queries"
	"github.com/goliatone/go-homedash/internal/app"
)

type layoutCmd struct {
	Locale string `help:"Locale used for widget titles."`
	JSON   bool   `help:"Print the board as JSON."`
}

type catalogCmd struct {
	Locale string `help:"Locale used for widget titles."`
	Unused bool   `help:"Only list widgets that are not on the board."`
}

type addCmd struct {
	ID string `arg:"" help:"Catalog widget id."`
}

type removeCmd struct {
	ID string `arg:"" help:"Widget id on the board."`
}

type moveCmd struct {
	ID        string `arg:"" help:"Widget id on the board."`
	Direction string `arg:"" enum:"before,after" help:"before or after."`
}

type resetCmd struct{}

type insightCmd struct {
	ID     string `default:"w-ai" help:"Insight widget id."`
	Locale string `help:"Locale used for messages."`
}

// session opens the app and exposes it through the command executor.
func session(ctx context.Context, g *globals, rt *runtime, fn func(*app.App, httpapi.Executor) error) error {
	a, err := g.open(ctx, rt)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a, httpapi.NewCommandExecutor(a.Service, a.Telemetry))
}

// editing runs fn with the board in edit mode and returns to browsing after.
func editing(ctx context.Context, exec httpapi.Executor, fn func() error) error {
	on, off := true, false
	if err := exec.ToggleEdit(ctx, commands.ToggleEditInput{Editing: &on}); err != nil {
		return err
	}
	err := fn()
	if toggleErr := exec.ToggleEdit(ctx, commands.ToggleEditInput{Editing: &off}); err == nil {
		err = toggleErr
	}
	return err
}

func (cmd *layoutCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	return session(ctx, g, rt, func(a *app.App, exec httpapi.Executor) error {
		view, err := exec.Board(ctx, queries.BoardInput{Locale: localeOr(cmd.Locale, a)})
		if err != nil {
			return err
		}
		if cmd.JSON {
			enc := json.NewEncoder(rt.out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}
		printBoard(rt.out, view)
		return nil
	})
}

func (cmd *catalogCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	return session(ctx, g, rt, func(a *app.App, exec httpapi.Executor) error {
		entries, err := exec.Catalog(ctx, queries.CatalogInput{UnusedOnly: cmd.Unused, Locale: localeOr(cmd.Locale, a)})
		if err != nil {
			return err
		}
		for _, entry := range entries {
			marker := " "
			if entry.OnBoard {
				marker = "*"
			}
			fmt.Fprintf(rt.out, "%s %-14s %-14s span=%d  %s\n", marker, entry.ID, entry.Kind, entry.Span, entry.Title)
		}
		return nil
	})
}

func (cmd *addCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	return mutate(ctx, g, rt, func(exec httpapi.Executor) error {
		return exec.AddWidget(ctx, commands.AddWidgetInput{WidgetID: cmd.ID})
	})
}

func (cmd *removeCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	return mutate(ctx, g, rt, func(exec httpapi.Executor) error {
		return exec.RemoveWidget(ctx, commands.RemoveWidgetInput{WidgetID: cmd.ID})
	})
}

func (cmd *moveCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	return mutate(ctx, g, rt, func(exec httpapi.Executor) error {
		return exec.MoveWidget(ctx, commands.MoveWidgetInput{WidgetID: cmd.ID, Direction: cmd.Direction})
	})
}

func (cmd *resetCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	return mutate(ctx, g, rt, func(exec httpapi.Executor) error {
		return exec.ResetLayout(ctx, commands.ResetLayoutInput{})
	})
}

func mutate(ctx context.Context, g *globals, rt *runtime, fn func(httpapi.Executor) error) error {
	return session(ctx, g, rt, func(a *app.App, exec httpapi.Executor) error {
		if err := editing(ctx, exec, func() error { return fn(exec) }); err != nil {
			return err
		}
		fmt.Fprintln(rt.out, strings.Join(a.Service.Layout().Sequence(), " "))
		return nil
	})
}

func (cmd *insightCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	return session(ctx, g, rt, func(a *app.App, exec httpapi.Executor) error {
		if err := exec.RefreshWidget(ctx, commands.RefreshWidgetInput{WidgetID: cmd.ID, Wait: true}); err != nil {
			return err
		}
		view, err := exec.Board(ctx, queries.BoardInput{Locale: localeOr(cmd.Locale, a)})
		if err != nil {
			return err
		}
		for _, frame := range view.Frames {
			if frame.ID != cmd.ID {
				continue
			}
			if frame.Data["status"] == "failed" {
				return fmt.Errorf("insight: %v", frame.Data["message"])
			}
			fmt.Fprintln(rt.out, frame.Data["text"])
			return nil
		}
		return fmt.Errorf("%w: %s", dashboard.ErrUnknownWidget, cmd.ID)
	})
}

func localeOr(locale string, a *app.App) string {
	if locale != "" {
		return locale
	}
	return a.Config.User.Locale
}

func printBoard(out io.Writer, view dashboard.BoardView) {
	fmt.Fprintf(out, "mode: %s\n", view.Mode)
	for _, frame := range view.Frames {
		fmt.Fprintf(out, "%d. %-14s %-18s span=%d", frame.Index+1, frame.ID, frame.Title, frame.Span)
		if summary := summarize(frame); summary != "" {
			fmt.Fprintf(out, "  %s", summary)
		}
		fmt.Fprintln(out)
	}
}

func summarize(frame dashboard.FrameView) string {
	if frame.Error != "" {
		return "error: " + frame.Error
	}
	switch frame.Kind {
	case dashboard.KindInsight:
		if text, ok := frame.Data["text"].(string); ok && text != "" {
			return text
		}
		if msg, ok := frame.Data["message"].(string); ok {
			return fmt.Sprintf("[%v] %s", frame.Data["status"], msg)
		}
		return fmt.Sprintf("[%v]", frame.Data["status"])
	case dashboard.KindTimer:
		return fmt.Sprintf("%v", frame.Data["label"])
	}
	return ""
}
