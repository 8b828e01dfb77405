package dashboard

import (
	"context"
	"time"
)

// ActivityItem represents a recent activity entry displayed by the widget.
type ActivityItem struct {
	Action  string        `json:"action"`
	Details string        `json:"details,omitempty"`
	Ago     time.Duration `json:"ago"`
}

// StaticDataSource returns a fixed snapshot useful for demos/tests.
type StaticDataSource struct {
	Data Snapshot
}

// Snapshot returns a copy of the static snapshot so providers cannot mutate it.
func (s StaticDataSource) Snapshot(context.Context) (Snapshot, error) {
	return cloneSnapshot(s.Data), nil
}

// RecentActivity returns up to limit entries, newest first.
func RecentActivity(items []ActivityItem, limit int) []ActivityItem {
	if limit <= 0 || limit >= len(items) {
		return append([]ActivityItem{}, items...)
	}
	return append([]ActivityItem{}, items[:limit]...)
}

// DefaultActivityItems provides placeholder entries for the demo feed.
func DefaultActivityItems() []ActivityItem {
	return []ActivityItem{
		{Action: "Reviewed the onboarding flow", Details: "Figma · Growth squad", Ago: 12 * time.Minute},
		{Action: "Published icon set v2", Details: "Design System", Ago: 2 * time.Hour},
		{Action: "Commented on checkout redesign", Details: "Payments", Ago: 5 * time.Hour},
		{Action: "Ran an accessibility audit", Details: "Marketing site", Ago: 26 * time.Hour},
	}
}

func cloneSnapshot(in Snapshot) Snapshot {
	out := in
	out.User.Preferences = append([]string(nil), in.User.Preferences...)
	out.Activity = append([]ActivityItem(nil), in.Activity...)
	out.SavedItems = append([]SavedItem(nil), in.SavedItems...)
	out.Stats = append([]StatItem(nil), in.Stats...)
	return out
}
