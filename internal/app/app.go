// Package app assembles a dashboard Service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-homedash/components/dashboard"
	"github.com/goliatone/go-homedash/internal/config"
	"github.com/goliatone/go-homedash/pkg/genai"
	"github.com/goliatone/go-homedash/pkg/redisstore"
	"github.com/goliatone/go-homedash/pkg/remotesource"
	"github.com/goliatone/go-homedash/pkg/sqlitestore"
)

// App bundles the running service with the resources it owns.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Service   *dashboard.Service
	Broadcast *dashboard.BroadcastHook
	Generator *genai.Client
	Telemetry dashboard.Telemetry

	closers []func() error
}

// NewLogger builds the process logger. Format "json" selects the JSON
// handler; anything else writes text.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// New wires storage, catalog, data source, and the insight generator, then
// starts the service.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{Config: cfg, Logger: logger}

	storage, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := dashboard.BuildCatalog(cfg.Catalog.Manifests...)
	if err != nil {
		a.Close()
		return nil, err
	}
	data, err := newDataSource(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Generator = genai.New(genai.Config{
		APIKey:       cfg.Insight.ResolveAPIKey(),
		BaseURL:      cfg.Insight.BaseURL,
		DefaultModel: cfg.Insight.Model,
	})
	a.Broadcast = dashboard.NewBroadcastHook()
	a.closers = append(a.closers, func() error { a.Broadcast.Close(); return nil })

	a.Telemetry = dashboard.MultiTelemetry{
		dashboard.LogTelemetry{Logger: logger},
		dashboard.OTelTelemetry{},
	}
	a.Service = dashboard.NewService(dashboard.Options{
		Catalog:   catalog,
		Storage:   storage,
		LayoutKey: cfg.Storage.Key,
		Data:      data,
		Insight: dashboard.InsightOptions{
			Generator: a.Generator,
			Model:     cfg.Insight.Model,
			Timeout:   cfg.Insight.Timeout,
		},
		RefreshHook: dashboard.MultiHook{a.Broadcast, dashboard.LogHook{Logger: logger}},
		Telemetry:   a.Telemetry,
		Logger:      logger,
	})
	sequence := a.Service.Start(ctx)
	logger.Info("dashboard ready", "driver", cfg.Storage.Driver, "widgets", len(sequence))
	return a, nil
}

// Close unmounts every widget and releases storage handles.
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.Close()
	}
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}

func (a *App) openStorage(ctx context.Context) (dashboard.Storage, error) {
	cfg := a.Config.Storage
	switch cfg.Driver {
	case "memory":
		return dashboard.NewInMemoryStorage(), nil
	case "file", "":
		return dashboard.NewFileStorage(cfg.Path)
	case "sqlite":
		store, err := sqlitestore.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case "redis":
		store, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("app: unknown storage driver %q", cfg.Driver)
	}
}

func newDataSource(cfg config.Config) (dashboard.DataSource, error) {
	var source dashboard.DataSource
	if cfg.Data.RemoteURL != "" {
		client, err := remotesource.NewHTTPClient(remotesource.HTTPConfig{
			BaseURL: cfg.Data.RemoteURL,
			APIKey:  cfg.Data.RemoteAPIKey,
		})
		if err != nil {
			return nil, err
		}
		source = client
	} else {
		source = dashboard.FileDataSource{Path: cfg.Data.Path, Fallback: dashboard.DefaultSnapshot()}
	}
	source = profileOverlay{source: source, user: cfg.User}
	return dashboard.NewCachedDataSource(source, cfg.Data.CacheTTL), nil
}

// profileOverlay replaces snapshot profile fields with configured values.
type profileOverlay struct {
	source dashboard.DataSource
	user   config.UserConfig
}

func (p profileOverlay) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	snapshot, err := p.source.Snapshot(ctx)
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	if p.user.Name != "" {
		snapshot.User.Name = p.user.Name
	}
	if p.user.Role != "" {
		snapshot.User.Role = p.user.Role
	}
	if len(p.user.Preferences) > 0 {
		snapshot.User.Preferences = append([]string(nil), p.user.Preferences...)
	}
	if p.user.Locale != "" {
		snapshot.User.Locale = p.user.Locale
	}
	return snapshot, nil
}
