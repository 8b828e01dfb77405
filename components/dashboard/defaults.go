package dashboard

import "time"

// DefaultLayoutKey is the storage key holding the JSON-encoded widget sequence.
const DefaultLayoutKey = "dashboard.layout"

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		ID:    "w-ai",
		Kind:  KindInsight,
		Title: "AI Insight",
		TitleLocalized: map[string]string{
			"es": "Resumen inteligente",
		},
		Description: "Generated summary of recent activity",
		Span:        2,
	},
	{
		ID:    "w-stats",
		Kind:  KindStats,
		Title: "Stats",
		TitleLocalized: map[string]string{
			"es": "Estadísticas",
		},
		Description: "Key personal metrics",
		Span:        1,
	},
	{
		ID:    "w-activity",
		Kind:  KindActivityFeed,
		Title: "Recent Activity",
		TitleLocalized: map[string]string{
			"es": "Actividad reciente",
		},
		Description: "Latest activity entries",
		Span:        1,
	},
	{
		ID:    "w-saved",
		Kind:  KindSavedItems,
		Title: "Saved Items",
		TitleLocalized: map[string]string{
			"es": "Guardados",
		},
		Description: "Bookmarked links",
		Span:        1,
	},
	{
		ID:          "w-timer",
		Kind:        KindTimer,
		Title:       "Focus Timer",
		Description: "Pomodoro style countdown",
		Span:        1,
	},
}

var defaultLayout = []string{"w-ai", "w-stats", "w-activity", "w-saved", "w-timer"}

// DefaultWidgetDefinitions returns the built-in catalog.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultLayout returns the sequence used when storage holds nothing usable.
func DefaultLayout() []string {
	return append([]string{}, defaultLayout...)
}

// DefaultSnapshot provides placeholder domain data for demos/tests.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		User: UserProfile{
			Name:        "Alex Morgan",
			Role:        "Product Designer",
			Preferences: []string{"design systems", "accessibility", "typography"},
		},
		Activity: DefaultActivityItems(),
		SavedItems: []SavedItem{
			{Title: "Color contrast checker", URL: "https://webaim.org/resources/contrastchecker/", Tag: "a11y"},
			{Title: "Type scale", URL: "https://typescale.com", Tag: "typography"},
			{Title: "Design tokens spec", URL: "https://tr.designtokens.org/format/", Tag: "systems"},
		},
		Stats: []StatItem{
			{Label: "Tasks done", Value: 18, Delta: 4},
			{Label: "Focus hours", Value: 12.5, Unit: "h", Delta: -1.5},
			{Label: "Reviews", Value: 7, Delta: 2},
		},
		FocusTimer: 25 * time.Minute,
	}
}
