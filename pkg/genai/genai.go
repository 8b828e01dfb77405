// Package genai adapts llm-sdk language models to the insight widget's
// Generator contract.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	llmsdk "github.com/hoangvvo/llm-sdk/sdk-go"
	"github.com/hoangvvo/llm-sdk/sdk-go/google"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-homedash/components/dashboard"
)

const tracerName = "github.com/goliatone/go-homedash/pkg/genai"

// ErrEmptyResponse is returned when the model answers without any text part.
var ErrEmptyResponse = errors.New("genai: empty response")

// ModelFactory builds a language model for a model id.
type ModelFactory func(modelID string) llmsdk.LanguageModel

// Config configures the client. APIKey is required unless Factory is set.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Factory      ModelFactory
	Tracer       trace.Tracer
}

// Client generates text through a Gemini model. Models are created lazily
// per model id and reused.
type Client struct {
	apiKey       string
	defaultModel string
	factory      ModelFactory
	tracer       trace.Tracer

	mu     sync.Mutex
	models map[string]llmsdk.LanguageModel
}

// New creates a client. A zero Config yields a client whose Ready reports
// dashboard.ErrNotConfigured.
func New(cfg Config) *Client {
	c := &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		defaultModel: cfg.DefaultModel,
		factory:      cfg.Factory,
		tracer:       cfg.Tracer,
		models:       map[string]llmsdk.LanguageModel{},
	}
	if c.defaultModel == "" {
		c.defaultModel = dashboard.DefaultInsightModel
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	if c.factory == nil && c.apiKey != "" {
		opts := google.GoogleModelOptions{APIKey: c.apiKey, BaseURL: cfg.BaseURL}
		c.factory = func(modelID string) llmsdk.LanguageModel {
			return google.NewGoogleModel(modelID, opts)
		}
	}
	return c
}

// Ready reports whether a model can be built.
func (c *Client) Ready() error {
	if c == nil || c.factory == nil {
		return fmt.Errorf("%w: missing api key", dashboard.ErrNotConfigured)
	}
	return nil
}

var _ dashboard.Generator = (*Client)(nil)

// Generate sends the prompt as a single user message and joins the text
// parts of the response.
func (c *Client) Generate(ctx context.Context, req dashboard.GenerateRequest) (dashboard.GenerateResponse, error) {
	if err := c.Ready(); err != nil {
		return dashboard.GenerateResponse{}, err
	}
	modelID := req.Model
	if modelID == "" {
		modelID = c.defaultModel
	}
	ctx, span := c.tracer.Start(ctx, "homedash.insight.generate", trace.WithAttributes(
		attribute.String("genai.model", modelID),
		attribute.Int("genai.prompt_length", len(req.Prompt)),
	))
	defer span.End()

	input := &llmsdk.LanguageModelInput{
		Messages: []llmsdk.Message{{
			UserMessage: &llmsdk.UserMessage{
				Content: []llmsdk.Part{{TextPart: &llmsdk.TextPart{Text: req.Prompt}}},
			},
		}},
	}
	resp, err := c.model(modelID).Generate(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dashboard.GenerateResponse{}, err
	}
	text := responseText(resp)
	if text == "" {
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		return dashboard.GenerateResponse{}, ErrEmptyResponse
	}
	span.SetAttributes(attribute.Int("genai.response_length", len(text)))
	return dashboard.GenerateResponse{Text: text}, nil
}

func (c *Client) model(modelID string) llmsdk.LanguageModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if model, ok := c.models[modelID]; ok {
		return model
	}
	model := c.factory(modelID)
	c.models[modelID] = model
	return model
}

func responseText(resp *llmsdk.ModelResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, part := range resp.Content {
		if part.TextPart != nil && part.TextPart.Text != "" {
			parts = append(parts, part.TextPart.Text)
		}
	}
	return strings.Join(parts, "")
}
