package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/goliatone/go-homedash/components/dashboard"
	"github.com/goliatone/go-homedash/internal/tui"
)

type tuiCmd struct {
	Locale string `help:"Locale used for widget titles."`
}

func (cmd *tuiCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	a, err := g.open(ctx, rt)
	if err != nil {
		return err
	}
	defer a.Close()

	events, cancel := a.Broadcast.Subscribe()
	defer cancel()

	model := tui.New(ctx, tui.Options{
		Board:  a.Service,
		Locale: localeOr(cmd.Locale, a),
		Events: events,
		Theme:  dashboard.DefaultTheme(),
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
