package adapters

import (
	"context"
	"errors"
	"fmt"

	"workmarket_sdr/internal/conversation/ports"
	"workmarket_sdr/platform/ai/gemini"
	"workmarket_sdr/platform/ai/moonshot"
	"workmarket_sdr/platform/ai/ollama"
	"workmarket_sdr/platform/config"

	"google.golang.org/genai"
)

// OllamaCompletion adapts the Ollama chat client to the conversation port.
type OllamaCompletion struct {
	client *ollama.Client
}

// NewOllamaCompletion creates a new Ollama completion adapter.
func NewOllamaCompletion(client *ollama.Client) *OllamaCompletion {
	return &OllamaCompletion{client: client}
}

// Complete sends the messages unchanged and maps missing fields to port errors.
func (a *OllamaCompletion) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	messages := make([]ollama.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ollama.Message{Role: m.Role, Content: m.Content})
	}

	text, err := a.client.Chat(ctx, ollama.ChatRequest{Model: req.Model, Messages: messages})
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, ollama.ErrEmptyResponse):
		return "", fmt.Errorf("%w: %w", ports.ErrEmptyResponse, err)
	case errors.Is(err, ollama.ErrMissingMessage), errors.Is(err, ollama.ErrMissingContent):
		return "", fmt.Errorf("%w: %w", ports.ErrUnexpectedResponse, err)
	default:
		return "", err
	}
}

// contentGenerator is implemented by the genai-shaped backends.
type contentGenerator interface {
	Generate(ctx context.Context, systemPrompt string, contents []*genai.Content) (string, error)
}

// GenAICompletion adapts backends that take genai contents plus a separate
// system instruction.
type GenAICompletion struct {
	gen contentGenerator
}

// NewGenAICompletion creates a new genai completion adapter.
func NewGenAICompletion(gen contentGenerator) *GenAICompletion {
	return &GenAICompletion{gen: gen}
}

// Complete lifts system messages into the system instruction and maps
// assistant turns to the model role. The request model is ignored; the
// backend was created with its own.
func (a *GenAICompletion) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	system, contents := toGenAIContents(req.Messages)
	text, err := a.gen.Generate(ctx, system, contents)
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, gemini.ErrNoCandidates), errors.Is(err, moonshot.ErrEmptyChoices):
		return "", fmt.Errorf("%w: %w", ports.ErrEmptyResponse, err)
	default:
		return "", err
	}
}

func toGenAIContents(messages []ports.Message) (string, []*genai.Content) {
	var system string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			if system != "" {
				system += "\n"
			}
			system += m.Content
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return system, contents
}

// NewCompletionClient builds the backend selected by LLM_PROVIDER.
func NewCompletionClient(ctx context.Context, cfg config.CompletionConfig) (ports.CompletionClient, error) {
	switch cfg.GetLLMProvider() {
	case config.ProviderOllama:
		return NewOllamaCompletion(ollama.NewClient(ollama.Config{
			URL:            cfg.GetLLMAPIURL(),
			APIKey:         cfg.GetLLMAPIKey(),
			ConnectTimeout: cfg.GetLLMConnectTimeout(),
			ReadTimeout:    cfg.GetLLMReadTimeout(),
		})), nil
	case config.ProviderGemini:
		model, err := gemini.NewModel(ctx, gemini.Config{
			APIKey:  cfg.GetLLMAPIKey(),
			Model:   cfg.GetLLMModel(),
			Timeout: cfg.GetLLMConnectTimeout() + cfg.GetLLMReadTimeout(),
		})
		if err != nil {
			return nil, err
		}
		return NewGenAICompletion(model), nil
	case config.ProviderMoonshot:
		return NewGenAICompletion(moonshot.NewModel(moonshot.Config{
			APIKey:  cfg.GetLLMAPIKey(),
			BaseURL: cfg.GetLLMAPIURL(),
			Model:   cfg.GetLLMModel(),
			Timeout: cfg.GetLLMConnectTimeout() + cfg.GetLLMReadTimeout(),
		})), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.GetLLMProvider())
	}
}
