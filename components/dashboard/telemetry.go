package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

func normalizeLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// LogTelemetry writes every event as a debug log line.
type LogTelemetry struct {
	Logger *slog.Logger
}

// Record logs the event with its payload as attributes.
func (t LogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	logger := normalizeLogger(t.Logger)
	args := make([]any, 0, len(payload)*2)
	for _, key := range sortedKeys(payload) {
		args = append(args, key, payload[key])
	}
	logger.DebugContext(ctx, event, args...)
}

// OTelTelemetry attaches events to the span carried by ctx. Without an active
// span the events are dropped by the OpenTelemetry no-op span.
type OTelTelemetry struct{}

// Record adds event to the current span.
func (OTelTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(payload))
	for _, key := range sortedKeys(payload) {
		attrs = append(attrs, attributeFor(key, payload[key]))
	}
	span.AddEvent(event, trace.WithAttributes(attrs...))
}

// MultiTelemetry fans events out to several sinks.
type MultiTelemetry []Telemetry

// Record forwards to every non-nil sink.
func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, t := range m {
		if t != nil {
			t.Record(ctx, event, payload)
		}
	}
}

func attributeFor(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case uint64:
		return attribute.Int64(key, int64(v))
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
