package genai

import (
	"context"
	"errors"
	"testing"

	llmsdk "github.com/hoangvvo/llm-sdk/sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/goliatone/go-homedash/components/dashboard"
)

type stubModel struct {
	id     string
	parts  []llmsdk.Part
	err    error
	inputs []*llmsdk.LanguageModelInput
}

func (m *stubModel) Provider() string                        { return "stub" }
func (m *stubModel) ModelID() string                         { return m.id }
func (m *stubModel) Metadata() *llmsdk.LanguageModelMetadata { return nil }

func (m *stubModel) Generate(_ context.Context, input *llmsdk.LanguageModelInput) (*llmsdk.ModelResponse, error) {
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return &llmsdk.ModelResponse{Content: m.parts}, nil
}

func (m *stubModel) Stream(context.Context, *llmsdk.LanguageModelInput) (*llmsdk.LanguageModelStream, error) {
	return nil, errors.New("stream not supported")
}

func textPart(text string) llmsdk.Part {
	return llmsdk.Part{TextPart: &llmsdk.TextPart{Text: text}}
}

func TestClientReadyWithoutKey(t *testing.T) {
	client := New(Config{})
	assert.ErrorIs(t, client.Ready(), dashboard.ErrNotConfigured)
	_, err := client.Generate(context.Background(), dashboard.GenerateRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, dashboard.ErrNotConfigured)

	assert.NoError(t, New(Config{APIKey: "key"}).Ready())
}

func TestClientGenerateJoinsTextParts(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	models := map[string]*stubModel{}
	client := New(Config{
		Tracer: provider.Tracer("test"),
		Factory: func(id string) llmsdk.LanguageModel {
			m := &stubModel{id: id, parts: []llmsdk.Part{textPart("Busy week. "), {}, textPart("Take a break.")}}
			models[id] = m
			return m
		},
	})

	resp, err := client.Generate(context.Background(), dashboard.GenerateRequest{Prompt: "summarize"})
	require.NoError(t, err)
	assert.Equal(t, "Busy week. Take a break.", resp.Text)

	_, err = client.Generate(context.Background(), dashboard.GenerateRequest{Prompt: "again"})
	require.NoError(t, err)

	model := models[dashboard.DefaultInsightModel]
	require.NotNil(t, model)
	assert.Len(t, models, 1, "models are cached per id")
	require.Len(t, model.inputs, 2)
	msg := model.inputs[0].Messages[0]
	require.NotNil(t, msg.UserMessage)
	assert.Equal(t, "summarize", msg.UserMessage.Content[0].TextPart.Text)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "homedash.insight.generate", spans[0].Name())
}

func TestClientGenerateErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	client := New(Config{Factory: func(id string) llmsdk.LanguageModel {
		if id == "broken" {
			return &stubModel{id: id, err: boom}
		}
		return &stubModel{id: id}
	}})

	_, err := client.Generate(context.Background(), dashboard.GenerateRequest{Model: "broken"})
	assert.ErrorIs(t, err, boom)

	_, err = client.Generate(context.Background(), dashboard.GenerateRequest{Model: "silent"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClientDrivesInsightFetcher(t *testing.T) {
	client := New(Config{Factory: func(id string) llmsdk.LanguageModel {
		return &stubModel{id: id, parts: []llmsdk.Part{textPart("  Nice focus streak.  ")}}
	}})
	fetcher := dashboard.InsightFetcher{Generator: client, Snapshot: dashboard.DefaultSnapshot}
	require.NoError(t, fetcher.Ready())
	text, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Nice focus streak.", text)
}
