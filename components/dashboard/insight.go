package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// InsightActivityLimit is the number of recent activity entries the prompt includes.
const InsightActivityLimit = 3

// DefaultInsightModel is used when no model identifier is configured.
const DefaultInsightModel = "gemini-2.5-flash"

// GenerateRequest is the single external generation call.
type GenerateRequest struct {
	Model  string
	Prompt string
}

// GenerateResponse carries the generated text.
type GenerateResponse struct {
	Text string
}

// Generator performs text generation. Implementations may also implement
// Ready() error to report a missing credential before any call is attempted.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

type readinessChecker interface {
	Ready() error
}

// BuildInsightPrompt renders the prompt from the user profile, the three most
// recent activity entries and the preference list.
func BuildInsightPrompt(snapshot Snapshot) string {
	var b strings.Builder
	user := snapshot.User
	fmt.Fprintf(&b, "You are a helpful assistant writing a short personal dashboard insight for %s", fallbackString(user.Name, "the user"))
	if user.Role != "" {
		fmt.Fprintf(&b, ", who works as %s", user.Role)
	}
	b.WriteString(".\n")
	recent := RecentActivity(snapshot.Activity, InsightActivityLimit)
	if len(recent) > 0 {
		b.WriteString("Recent activity:\n")
		for _, item := range recent {
			b.WriteString("- ")
			b.WriteString(item.Action)
			if item.Details != "" {
				b.WriteString(" (")
				b.WriteString(item.Details)
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
	}
	if len(user.Preferences) > 0 {
		fmt.Fprintf(&b, "Interests: %s.\n", strings.Join(user.Preferences, ", "))
	}
	b.WriteString("Summarize what they have been focused on and suggest one next step in two or three sentences.")
	return b.String()
}

// InsightFetcher adapts a Generator to the fetch state machine.
type InsightFetcher struct {
	Generator Generator
	Model     string
	Snapshot  func() Snapshot
}

// Ready reports ErrNotConfigured when no generator or credential is available.
func (f InsightFetcher) Ready() error {
	if f.Generator == nil {
		return ErrNotConfigured
	}
	if checker, ok := f.Generator.(readinessChecker); ok {
		if err := checker.Ready(); err != nil {
			if errors.Is(err, ErrNotConfigured) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrNotConfigured, err)
		}
	}
	return nil
}

// Fetch builds the prompt and performs the generation call.
func (f InsightFetcher) Fetch(ctx context.Context) (string, error) {
	var snapshot Snapshot
	if f.Snapshot != nil {
		snapshot = f.Snapshot()
	}
	model := f.Model
	if model == "" {
		model = DefaultInsightModel
	}
	resp, err := f.Generator.Generate(ctx, GenerateRequest{Model: model, Prompt: BuildInsightPrompt(snapshot)})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// InsightOptions configures the insight provider.
type InsightOptions struct {
	Generator Generator
	Model     string
	Timeout   time.Duration
	Logger    *slog.Logger
	Telemetry Telemetry
}

// InsightProvider renders the insight widget. Each mounted widget owns its own
// FetchMachine.
type InsightProvider struct {
	opts InsightOptions
}

var (
	_ ContentProvider = (*InsightProvider)(nil)
	_ Mounter         = (*InsightProvider)(nil)
)

// NewInsightProvider builds the provider.
func NewInsightProvider(opts InsightOptions) *InsightProvider {
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &InsightProvider{opts: opts}
}

// Render is used when no instance is mounted; it shows the idle state.
func (p *InsightProvider) Render(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return insightData(ctx, meta, FetchState[string]{Status: FetchIdle}), nil
}

// Mount creates an instance and performs its automatic first fetch.
func (p *InsightProvider) Mount(ctx context.Context, meta WidgetContext) Instance {
	inst := &insightInstance{snapshot: cloneSnapshot(meta.Snapshot)}
	inst.machine = NewFetchMachine[string](InsightFetcher{
		Generator: p.opts.Generator,
		Model:     p.opts.Model,
		Snapshot:  inst.currentSnapshot,
	}, FetchOptions{
		Name:      "insight:" + meta.Definition.ID,
		Timeout:   p.opts.Timeout,
		Logger:    p.opts.Logger,
		Telemetry: p.opts.Telemetry,
	})
	inst.machine.Mount(ctx)
	return inst
}

type insightInstance struct {
	machine *FetchMachine[string]

	mu       sync.RWMutex
	snapshot Snapshot
}

var (
	_ Instance  = (*insightInstance)(nil)
	_ Refresher = (*insightInstance)(nil)
	_ Watcher   = (*insightInstance)(nil)
)

func (i *insightInstance) Render(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	i.mu.Lock()
	i.snapshot = cloneSnapshot(meta.Snapshot)
	i.mu.Unlock()
	return insightData(ctx, meta, i.machine.State()), nil
}

func (i *insightInstance) Refresh() <-chan struct{} {
	return i.machine.Refresh()
}

func (i *insightInstance) Unmount() {
	i.machine.Unmount()
}

func (i *insightInstance) Watch(fn func(FetchView)) func() {
	return i.machine.Subscribe(func(state FetchState[string]) {
		fn(FetchViewOf(state))
	})
}

func (i *insightInstance) View() FetchView {
	return FetchViewOf(i.machine.State())
}

func (i *insightInstance) currentSnapshot() Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return cloneSnapshot(i.snapshot)
}

func insightData(ctx context.Context, meta WidgetContext, state FetchState[string]) WidgetData {
	data := WidgetData{
		"status":     state.Status.String(),
		"generation": state.Generation,
		"refresh_label": translateOrFallback(ctx, meta.Translator,
			"dashboard.widget.insight.refresh", meta.Locale, "Refresh", nil),
	}
	switch state.Status {
	case FetchSucceeded:
		data["text"] = state.Payload
	case FetchFailed:
		data["message"] = state.Message
	case FetchLoading:
		data["message"] = translateOrFallback(ctx, meta.Translator,
			"dashboard.widget.insight.loading", meta.Locale, "Generating insight…", nil)
	}
	return data
}

func fallbackString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
