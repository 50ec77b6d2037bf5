package moonshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrEmptyChoices is returned when the API answers without choices.
var ErrEmptyChoices = errors.New("kimi api error: empty choices")

// Config for Kimi
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	DisableThinking bool // Disable thinking mode for kimi-k2.5 (uses temp 0.6 instead of 1.0)
	Timeout         time.Duration
}

// KimiModel sends conversations to Moonshot's OpenAI-compatible API.
type KimiModel struct {
	config Config
	client *http.Client
}

func NewModel(cfg Config) *KimiModel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.moonshot.ai/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "kimi-k2-turbo-preview"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &KimiModel{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (m *KimiModel) Name() string {
	return m.config.Model
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

// Generate sends systemPrompt followed by contents and returns the first
// choice's text.
func (m *KimiModel) Generate(ctx context.Context, systemPrompt string, contents []*genai.Content) (string, error) {
	messages := make([]openAIMessage, 0, len(contents)+1)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, m.convertMessages(contents)...)

	payload := map[string]interface{}{
		"model":    m.config.Model,
		"messages": messages,
		"stream":   false,
	}
	if m.config.DisableThinking {
		payload["thinking"] = map[string]string{"type": "disabled"}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal kimi request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create kimi request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("kimi api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode kimi response: %v", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("kimi api error: %v", result.Error)
	}
	if len(result.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return result.Choices[0].Message.Content, nil
}

func (m *KimiModel) convertMessages(contents []*genai.Content) []openAIMessage {
	messages := make([]openAIMessage, 0, len(contents))
	for _, content := range contents {
		if content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range content.Parts {
			if part == nil {
				continue
			}
			appendText(&text, part.Text)
		}
		if text.Len() == 0 {
			continue
		}
		messages = append(messages, openAIMessage{
			Role:    roleForContent(content.Role),
			Content: text.String(),
		})
	}
	return messages
}

func roleForContent(role string) string {
	if role == string(genai.RoleModel) {
		return "assistant"
	}
	return "user"
}

func appendText(builder *strings.Builder, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if builder.Len() > 0 {
		builder.WriteString("\n")
	}
	builder.WriteString(text)
}
