package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// ActivityFeedLimit is the number of entries the activity widget shows.
const ActivityFeedLimit = 5

func defaultProviders() map[WidgetKind]ContentProvider {
	return map[WidgetKind]ContentProvider{
		KindActivityFeed: newActivityFeedProvider(ActivityFeedLimit),
		KindSavedItems:   ProviderFunc(renderSavedItems),
		KindStats:        ProviderFunc(renderStats),
		KindTimer:        ProviderFunc(renderTimer),
	}
}

func newActivityFeedProvider(limit int) ContentProvider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		items := RecentActivity(meta.Snapshot.Activity, limit)
		payload := make([]map[string]any, 0, len(items))
		for _, item := range items {
			payload = append(payload, map[string]any{
				"action":  item.Action,
				"details": item.Details,
				"ago":     humanizeAgo(item.Ago),
			})
		}
		empty := translateOrFallback(ctx, meta.Translator, "dashboard.widget.activity.empty", meta.Locale, "No recent activity", nil)
		return WidgetData{"items": payload, "empty_label": empty}, nil
	})
}

func renderSavedItems(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	payload := make([]map[string]any, 0, len(meta.Snapshot.SavedItems))
	for _, item := range meta.Snapshot.SavedItems {
		payload = append(payload, map[string]any{
			"title": item.Title,
			"url":   item.URL,
			"tag":   item.Tag,
		})
	}
	return WidgetData{"items": payload}, nil
}

func renderStats(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	payload := make([]map[string]any, 0, len(meta.Snapshot.Stats))
	for _, stat := range meta.Snapshot.Stats {
		payload = append(payload, map[string]any{
			"label": translateOrFallback(ctx, meta.Translator, "dashboard.widget.stats."+stat.Label, meta.Locale, stat.Label, nil),
			"value": formatStat(stat.Value, stat.Unit),
			"delta": formatDelta(stat.Delta),
			"trend": trendOf(stat.Delta),
		})
	}
	return WidgetData{"items": payload}, nil
}

func renderTimer(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	duration := meta.Snapshot.FocusTimer
	if duration <= 0 {
		duration = 25 * time.Minute
	}
	label := translateOrFallback(ctx, meta.Translator, "dashboard.widget.timer.label", meta.Locale, "Focus session", nil)
	return WidgetData{
		"label":    label,
		"duration": formatClock(duration),
		"seconds":  int(duration / time.Second),
	}, nil
}

func humanizeAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

func formatStat(value float64, unit string) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + unit
}

func formatDelta(delta float64) string {
	if delta == 0 {
		return ""
	}
	if delta > 0 {
		return "+" + strconv.FormatFloat(delta, 'f', -1, 64)
	}
	return strconv.FormatFloat(delta, 'f', -1, 64)
}

func trendOf(delta float64) string {
	switch {
	case delta > 0:
		return "up"
	case delta < 0:
		return "down"
	default:
		return "flat"
	}
}

func formatClock(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
