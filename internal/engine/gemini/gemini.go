// Package gemini adapts the Google Gen AI SDK to engine.Engine.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/config"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine"
)

const DefaultModel = "gemini-2.0-flash"

// ErrMissingAPIKey is returned by New when no credential is configured.
var ErrMissingAPIKey = errors.New("gemini: api key is not configured")

type Engine struct {
	client      *genai.Client
	model       string
	temperature float64
}

func New(ctx context.Context, cfg config.EngineConfig) (*Engine, error) {
	return NewWithHTTPClient(ctx, cfg, nil)
}

// NewWithHTTPClient lets tests point the SDK at a local server through
// cfg.BaseURL and a custom client.
func NewWithHTTPClient(ctx context.Context, cfg config.EngineConfig, httpClient *http.Client) (*Engine, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions.BaseURL = strings.TrimRight(base, "/") + "/"
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Engine{client: client, model: model, temperature: cfg.Temperature}, nil
}

func (e *Engine) Name() string { return "gemini:" + e.model }

func (e *Engine) GenerateText(ctx context.Context, req engine.Request) (string, error) {
	contents, gc, err := e.build(req)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Models.GenerateContent(ctx, e.modelFor(req), contents, gc)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (e *Engine) StreamText(ctx context.Context, req engine.Request, onDelta func(delta string)) (string, error) {
	contents, gc, err := e.build(req)
	if err != nil {
		return "", err
	}
	var full strings.Builder
	for resp, err := range e.client.Models.GenerateContentStream(ctx, e.modelFor(req), contents, gc) {
		if err != nil {
			return "", err
		}
		delta := resp.Text()
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return full.String(), nil
}

func (e *Engine) modelFor(req engine.Request) string {
	if m := strings.TrimSpace(req.Model); m != "" {
		return m
	}
	return e.model
}

func (e *Engine) build(req engine.Request) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	contents := toContents(req.Messages)
	if len(contents) == 0 {
		return nil, nil, errors.New("no messages")
	}
	gc := &genai.GenerateContentConfig{}
	if sys := strings.TrimSpace(req.System); sys != "" {
		gc.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	temp := req.Temperature
	if temp == 0 {
		temp = e.temperature
	}
	if temp > 0 {
		gc.Temperature = genai.Ptr(float32(temp))
	}
	return contents, gc, nil
}

// toContents maps assistant turns to the SDK's model role and drops empty
// messages.
func toContents(messages []engine.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == engine.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(text, role))
	}
	return out
}
