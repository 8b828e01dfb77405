package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/goliatone/go-homedash/internal/app"
	"github.com/goliatone/go-homedash/internal/config"
)

type globals struct {
	Config  string `short:"c" type:"path" env:"HOMEDASH_CONFIG" help:"Path to config.toml."`
	EnvFile string `name:"env-file" default:".env" help:"Optional dotenv file loaded before the config."`
	Verbose bool   `short:"v" help:"Log at debug level."`
}

type cli struct {
	globals `embed:""`

	Layout  layoutCmd  `cmd:"" default:"1" help:"Print the current board."`
	Catalog catalogCmd `cmd:"" help:"List catalog widgets and whether they are on the board."`
	Add     addCmd     `cmd:"" help:"Add a catalog widget to the end of the board."`
	Remove  removeCmd  `cmd:"" help:"Remove a widget from the board."`
	Move    moveCmd    `cmd:"" help:"Swap a widget with its neighbour."`
	Reset   resetCmd   `cmd:"" help:"Restore the default board."`
	Insight insightCmd `cmd:"" help:"Generate the AI insight and print it."`
	Serve   serveCmd   `cmd:"" help:"Serve the board over HTTP."`
	TUI     tuiCmd     `cmd:"" name:"tui" help:"Open the interactive terminal board."`
}

type runtime struct {
	out io.Writer
	err io.Writer
}

func main() {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli
	ctx := kong.Parse(&root,
		kong.Name("homedash"),
		kong.Description("Personal dashboard with an editable widget board."),
		kong.UsageOnError(),
		kong.BindTo(sigCtx, (*context.Context)(nil)),
	)
	err := ctx.Run(&root.globals, &runtime{out: os.Stdout, err: os.Stderr})
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	ctx.FatalIfErrorf(err)
}

// open loads configuration and wires the application.
func (g *globals) open(ctx context.Context, rt *runtime) (*app.App, error) {
	if g.EnvFile != "" {
		if err := godotenv.Load(g.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Verbose {
		cfg.Log.Level = "debug"
	}
	return app.New(ctx, cfg, app.NewLogger(cfg.Log, rt.err))
}

