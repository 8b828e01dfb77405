package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	readyErr error
	requests []GenerateRequest
}

func (g *stubGenerator) Generate(_ context.Context, req GenerateRequest) (GenerateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return GenerateResponse{}, g.err
	}
	return GenerateResponse{Text: g.text}, nil
}

func (g *stubGenerator) Ready() error { return g.readyErr }

func (g *stubGenerator) calls() []GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GenerateRequest(nil), g.requests...)
}

func TestBuildInsightPromptUsesThreeMostRecentEntries(t *testing.T) {
	snapshot := DefaultSnapshot()
	prompt := BuildInsightPrompt(snapshot)

	assert.Contains(t, prompt, "Alex Morgan")
	assert.Contains(t, prompt, "Product Designer")
	assert.Contains(t, prompt, "design systems, accessibility, typography")
	for _, item := range snapshot.Activity[:3] {
		assert.Contains(t, prompt, item.Action)
	}
	assert.NotContains(t, prompt, snapshot.Activity[3].Action)
}

func TestBuildInsightPromptHandlesEmptyProfile(t *testing.T) {
	prompt := BuildInsightPrompt(Snapshot{})
	assert.Contains(t, prompt, "the user")
	assert.NotContains(t, prompt, "Recent activity")
	assert.NotContains(t, prompt, "Interests")
}

func TestInsightFetcherReadiness(t *testing.T) {
	assert.ErrorIs(t, InsightFetcher{}.Ready(), ErrNotConfigured)

	gen := &stubGenerator{readyErr: errors.New("missing api key")}
	err := InsightFetcher{Generator: gen}.Ready()
	assert.ErrorIs(t, err, ErrNotConfigured)

	gen.readyErr = nil
	assert.NoError(t, InsightFetcher{Generator: gen}.Ready())
}

func TestInsightFetcherSendsModelAndPrompt(t *testing.T) {
	gen := &stubGenerator{text: "  You shipped a lot this week.  "}
	fetcher := InsightFetcher{Generator: gen, Snapshot: DefaultSnapshot}

	text, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "You shipped a lot this week.", text)

	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultInsightModel, calls[0].Model)
	assert.Equal(t, BuildInsightPrompt(DefaultSnapshot()), calls[0].Prompt)
}

func TestInsightProviderMountWithoutGenerator(t *testing.T) {
	provider := NewInsightProvider(InsightOptions{})
	meta := WidgetContext{Definition: WidgetDefinition{ID: "w-ai", Kind: KindInsight}, Snapshot: DefaultSnapshot()}

	inst := provider.Mount(context.Background(), meta)
	defer inst.Unmount()

	data, err := inst.Render(context.Background(), meta)
	require.NoError(t, err)
	assert.Equal(t, "failed", data["status"])
	assert.Equal(t, MessageNotConfigured, data["message"])
}

func TestInsightProviderMountFetchesAndRefreshes(t *testing.T) {
	gen := &stubGenerator{text: "first"}
	provider := NewInsightProvider(InsightOptions{Generator: gen, Model: "gemini-test"})
	meta := WidgetContext{Definition: WidgetDefinition{ID: "w-ai", Kind: KindInsight}, Snapshot: DefaultSnapshot()}

	inst := provider.Mount(context.Background(), meta)
	defer inst.Unmount()
	insight := inst.(*insightInstance)
	insight.machine.Wait()

	data, err := inst.Render(context.Background(), meta)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", data["status"])
	assert.Equal(t, "first", data["text"])

	var views []FetchView
	var mu sync.Mutex
	stop := insight.Watch(func(view FetchView) {
		mu.Lock()
		views = append(views, view)
		mu.Unlock()
	})
	defer stop()

	gen.mu.Lock()
	gen.text = "second"
	gen.mu.Unlock()
	meta.Snapshot.User.Name = "Sam Rivera"
	_, err = inst.Render(context.Background(), meta)
	require.NoError(t, err)

	waitSignal(t, insight.Refresh())
	assert.Equal(t, "second", insight.View().Payload)

	calls := gen.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "gemini-test", calls[1].Model)
	assert.True(t, strings.Contains(calls[1].Prompt, "Sam Rivera"), "refresh uses the latest snapshot")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, views, 2)
	assert.Equal(t, "loading", views[0].Status)
	assert.Equal(t, "succeeded", views[1].Status)
}

func TestInsightProviderRenderWithoutMountIsIdle(t *testing.T) {
	provider := NewInsightProvider(InsightOptions{})
	data, err := provider.Render(context.Background(), WidgetContext{})
	require.NoError(t, err)
	assert.Equal(t, "idle", data["status"])
	assert.Equal(t, "Refresh", data["refresh_label"])
}
