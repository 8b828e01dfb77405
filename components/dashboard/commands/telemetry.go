package commands

import (
	"context"

	dashboard "github.com/goliatone/go-homedash/components/dashboard"
)

// Telemetry is the sink commands report to. Successful mutations are recorded
// by the service itself, so commands only report rejected requests.
type Telemetry = dashboard.Telemetry

const eventCommandRejected = "dashboard.command.rejected"

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return dashboard.MultiTelemetry{}
	}
	return t
}

// rejected records err against command and returns it unchanged.
func rejected(ctx context.Context, t Telemetry, command, widgetID string, err error) error {
	if err == nil {
		return nil
	}
	payload := map[string]any{
		"command": command,
		"error":   err.Error(),
	}
	if widgetID != "" {
		payload["widget_id"] = widgetID
	}
	t.Record(ctx, eventCommandRejected, payload)
	return err
}
