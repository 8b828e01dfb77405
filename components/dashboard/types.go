package dashboard

import (
	"context"
	"time"
)

// WidgetKind tags the content provider that renders a widget.
type WidgetKind string

const (
	KindInsight      WidgetKind = "insight"
	KindActivityFeed WidgetKind = "activity-feed"
	KindSavedItems   WidgetKind = "saved-items"
	KindStats        WidgetKind = "stats"
	KindTimer        WidgetKind = "timer"
)

// KnownKinds lists the kinds the default dispatch knows how to render.
func KnownKinds() []WidgetKind {
	return []WidgetKind{KindInsight, KindActivityFeed, KindSavedItems, KindStats, KindTimer}
}

// Catalog is the read-only widget registry consulted by the layout store.
type Catalog interface {
	Lookup(id string) (WidgetDefinition, bool)
	Definitions() []WidgetDefinition
}

// Storage is the durable key/value medium the layout is persisted to.
// Get returns ErrStorageKeyNotFound when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// DataSource provides the read-only domain snapshot handed to content providers.
type DataSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// RefreshHook notifies transports (REST/WebSocket/TUI) about board changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetDefinition describes a catalog entry.
type WidgetDefinition struct {
	ID             string            `json:"id" yaml:"id"`
	Kind           WidgetKind        `json:"kind" yaml:"kind"`
	Title          string            `json:"title" yaml:"title"`
	TitleLocalized map[string]string `json:"title_localized,omitempty" yaml:"title_localized,omitempty"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	Span           int               `json:"span" yaml:"span"`
}

// UserProfile identifies the dashboard owner.
type UserProfile struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Preferences []string `json:"preferences"`
	Locale      string   `json:"locale,omitempty"`
}

// SavedItem is a bookmark shown by the saved-items widget.
type SavedItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Tag   string `json:"tag,omitempty"`
}

// StatItem is a single metric shown by the stats widget.
type StatItem struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Delta float64 `json:"delta,omitempty"`
}

// Snapshot is the domain data providers render from. Activity is ordered newest first.
type Snapshot struct {
	User       UserProfile    `json:"user"`
	Activity   []ActivityItem `json:"activity"`
	SavedItems []SavedItem    `json:"saved_items"`
	Stats      []StatItem     `json:"stats"`
	FocusTimer time.Duration  `json:"focus_timer"`
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	WidgetID string     `json:"widget_id,omitempty"`
	Reason   string     `json:"reason"`
	Sequence []string   `json:"sequence,omitempty"`
	Mode     string     `json:"mode,omitempty"`
	Fetch    *FetchView `json:"fetch,omitempty"`
}

// FetchView is the transport-friendly form of a fetch state.
type FetchView struct {
	Status     string `json:"status"`
	Payload    string `json:"payload,omitempty"`
	Message    string `json:"message,omitempty"`
	Generation uint64 `json:"generation"`
}
