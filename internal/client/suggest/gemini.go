package suggest

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
}

// Gemini is a Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Gemini{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.7),
			TopP:        genai.Ptr[float32](1),
			TopK:        genai.Ptr[float32](32),
		},
	}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// NewFromConfig builds a Client for apiKey. An empty key yields a Client
// that only ever answers NotConfiguredMessage.
func NewFromConfig(ctx context.Context, cfg GeminiConfig, logger logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return New(nil, logger), nil
	}
	g, err := NewGemini(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(g, logger), nil
}
