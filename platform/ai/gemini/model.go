// Package gemini adapts the Gemini API to a plain text-completion call.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrNoCandidates is returned when Gemini answers without any candidate.
var ErrNoCandidates = errors.New("gemini: response has no candidates")

// Config for the Gemini backend.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Model generates chat replies with Gemini.
type Model struct {
	client *genai.Client
	model  string
}

// NewModel creates the Gemini client.
func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Model{client: client, model: cfg.Model}, nil
}

func (m *Model) Name() string {
	return m.model
}

// Generate sends the conversation with systemPrompt as the system
// instruction and returns the concatenated candidate text.
func (m *Model) Generate(ctx context.Context, systemPrompt string, contents []*genai.Content) (string, error) {
	var cfg *genai.GenerateContentConfig
	if strings.TrimSpace(systemPrompt) != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	return resp.Text(), nil
}
