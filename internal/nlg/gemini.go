package nlg

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultTemperature = 0.5
)

// Interface compliance check.
var _ Gateway = (*Gemini)(nil)

// Gemini implements Gateway on the Google Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// Option configures a Gemini gateway.
type Option func(*Gemini)

// WithModel sets the model ID. Empty keeps the default.
func WithModel(model string) Option {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(g *Gemini) { g.temperature = t }
}

// NewGemini creates a Gemini gateway with the given API key and options.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("nlg.NewGemini: %w", err)
	}
	g := &Gemini{
		client:      gc,
		model:       defaultGeminiModel,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate that has any. Thought parts are skipped.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("nlg.Gemini.Generate: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" && !part.Thought {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String(), nil
}
