package dashboard

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHook forwards board events to several hooks and joins their errors.
type MultiHook []RefreshHook

// WidgetUpdated calls every non-nil hook.
func (m MultiHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs error
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// LogHook writes board events to a structured logger.
type LogHook struct {
	Logger *slog.Logger
}

// WidgetUpdated logs the event at info level; fetch transitions log at debug.
func (h LogHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	logger := normalizeLogger(h.Logger)
	attrs := []any{"reason", event.Reason}
	if event.WidgetID != "" {
		attrs = append(attrs, "widget_id", event.WidgetID)
	}
	if event.Mode != "" {
		attrs = append(attrs, "mode", event.Mode)
	}
	if len(event.Sequence) > 0 {
		attrs = append(attrs, "sequence", event.Sequence)
	}
	if event.Fetch != nil {
		attrs = append(attrs, "status", event.Fetch.Status, "generation", event.Fetch.Generation)
		logger.DebugContext(ctx, "dashboard event", attrs...)
		return nil
	}
	logger.InfoContext(ctx, "dashboard event", attrs...)
	return nil
}
