package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-homedash/components/dashboard"
	"github.com/goliatone/go-homedash/components/dashboard/gorouter"
	"github.com/goliatone/go-homedash/components/dashboard/httpapi"
	"github.com/goliatone/go-homedash/internal/app"
)

type serveCmd struct {
	Addr      string `help:"Listen address (defaults to server.addr)."`
	Transport string `default:"fiber" enum:"fiber,http" help:"fiber serves HTML, JSON and WebSocket routes; http serves JSON plus Server-Sent Events."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *globals, rt *runtime) error {
	a, err := g.open(ctx, rt)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := cmd.Addr
	if addr == "" {
		addr = a.Config.Server.Addr
	}
	exec := httpapi.NewCommandExecutor(a.Service, a.Telemetry)

	a.Logger.Info("serving board", "addr", addr, "transport", cmd.Transport)
	if cmd.Transport == "http" {
		return serveHTTP(ctx, addr, newMux(a, exec))
	}
	return serveFiber(ctx, addr, a, exec)
}

func serveFiber(ctx context.Context, addr string, a *app.App, exec *httpapi.CommandExecutor) error {
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return err
	}
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router: server.Router(),
		Controller: dashboard.NewController(dashboard.ControllerOptions{
			Service:  a.Service,
			Renderer: renderer,
		}),
		API:       exec,
		Broadcast: a.Broadcast,
		BasePath:  a.Config.Server.BasePath,
		LocaleResolver: func(c router.Context) string {
			if locale := c.Query("locale"); locale != "" {
				return locale
			}
			return a.Config.User.Locale
		},
	}); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- server.Serve(addr) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdown)
	}
}

// newMux mounts the JSON API and the event stream on a net/http mux.
func newMux(a *app.App, exec *httpapi.CommandExecutor) *http.ServeMux {
	h := exec.Handlers()
	base := strings.TrimSuffix(a.Config.Server.BasePath, "/") + "/dashboard"

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/_board", h.HandleBoard)
	mux.HandleFunc("GET "+base+"/catalog", h.HandleCatalog)
	mux.HandleFunc("POST "+base+"/mode", h.HandleToggleEdit)
	mux.HandleFunc("POST "+base+"/widgets", h.HandleAddWidget)
	mux.HandleFunc("DELETE "+base+"/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRemoveWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/widgets/{id}/move", func(w http.ResponseWriter, r *http.Request) {
		h.HandleMoveWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/widgets/{id}/refresh", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRefreshWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/reset", h.HandleResetLayout)
	mux.HandleFunc("GET "+base+"/events", a.Broadcast.ServeSSE)
	mux.HandleFunc("GET "+base+"/ws", a.Broadcast.ServeWebSocket)
	return mux
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}
