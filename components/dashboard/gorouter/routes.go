package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-homedash/components/dashboard"
	"github.com/goliatone/go-homedash/components/dashboard/commands"
	"github.com/goliatone/go-homedash/components/dashboard/httpapi"
	"github.com/goliatone/go-homedash/components/dashboard/queries"
)

// LocaleResolver picks the render locale for a request.
type LocaleResolver func(router.Context) string

// Config wires go-router with the board controller, API, and event hook.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	LocaleResolver LocaleResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for board endpoints.
type RouteConfig struct {
	HTML      string
	Board     string
	Catalog   string
	Mode      string
	Widgets   string
	WidgetID  string
	Move      string
	Refresh   string
	Reset     string
	WebSocket string
}

// Register mounts board routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/"
	}
	resolveLocale := cfg.LocaleResolver
	if resolveLocale == nil {
		resolveLocale = inferLocale
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), resolveLocale(ctx), &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Board, router.WrapHandler(func(ctx router.Context) error {
		view, err := cfg.Controller.View(ctx.Context(), resolveLocale(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, resolveLocale, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolveLocale LocaleResolver, routes RouteConfig) {
	board := func(ctx router.Context, status int) error {
		view, err := api.Board(ctx.Context(), queries.BoardInput{Locale: resolveLocale(ctx)})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(status, view)
	}

	r.Get(routes.Catalog, router.WrapHandler(func(ctx router.Context) error {
		entries, err := api.Catalog(ctx.Context(), queries.CatalogInput{
			UnusedOnly: ctx.Query("unused") == "true",
			Locale:     resolveLocale(ctx),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, entries)
	}))

	r.Post(routes.Mode, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ToggleEditInput
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
		}
		if err := api.ToggleEdit(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return board(ctx, http.StatusOK)
	}))

	r.Post(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.AddWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if err := api.AddWidget(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return board(ctx, http.StatusCreated)
	}))

	r.Delete(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "widget id is required"})
		}
		if err := api.RemoveWidget(ctx.Context(), commands.RemoveWidgetInput{WidgetID: id}); err != nil {
			return respondError(ctx, err)
		}
		return board(ctx, http.StatusOK)
	}))

	r.Post(routes.Move, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.MoveWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		payload.WidgetID = ctx.Param("id")
		if err := api.MoveWidget(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return board(ctx, http.StatusOK)
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		input := commands.RefreshWidgetInput{
			WidgetID: ctx.Param("id"),
			Wait:     ctx.Query("wait") == "true",
		}
		if err := api.RefreshWidget(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Post(routes.Reset, router.WrapHandler(func(ctx router.Context) error {
		if err := api.ResetLayout(ctx.Context(), commands.ResetLayoutInput{}); err != nil {
			return respondError(ctx, err)
		}
		return board(ctx, http.StatusOK)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(ctx.Header("Accept-Language"))
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Board == "" {
		routes.Board = "/dashboard/_board"
	}
	if routes.Catalog == "" {
		routes.Catalog = "/dashboard/catalog"
	}
	if routes.Mode == "" {
		routes.Mode = "/dashboard/mode"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/dashboard/widgets"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/dashboard/widgets/:id"
	}
	if routes.Move == "" {
		routes.Move = "/dashboard/widgets/:id/move"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/widgets/:id/refresh"
	}
	if routes.Reset == "" {
		routes.Reset = "/dashboard/reset"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
