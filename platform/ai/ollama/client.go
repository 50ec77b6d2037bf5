// Package ollama provides a client for Ollama-compatible /api/chat endpoints.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const maxErrorBody = 512

var (
	// ErrEmptyResponse is returned when the endpoint answers 2xx without a body.
	ErrEmptyResponse = errors.New("ollama: empty response body")
	// ErrMissingMessage is returned when the body has no message object.
	ErrMissingMessage = errors.New("ollama: response has no message")
	// ErrMissingContent is returned when the message has no content field.
	ErrMissingContent = errors.New("ollama: message has no content")
)

// Client calls a chat completion endpoint.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// Config configures the client.
type Config struct {
	// URL is the full chat endpoint, e.g. http://localhost:11434/api/chat.
	URL            string
	APIKey         string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// NewClient creates a client. ConnectTimeout bounds dialing; ReadTimeout
// bounds the wait for response headers and, added to the connect budget,
// the whole call.
func NewClient(cfg Config) *Client {
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = 5 * time.Second
	}
	read := cfg.ReadTimeout
	if read <= 0 {
		read = 25 * time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connect}).DialContext,
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: read,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   connect + read,
		},
	}
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Model   string        `json:"model,omitempty"`
	Message *replyMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

type replyMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Chat sends a non-streaming chat request and returns the assistant content.
// Exactly one attempt is made.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	req.Stream = false

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, excerpt(body))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", ErrEmptyResponse
	}

	var result chatResponse
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w (%s)", err, excerpt(body))
	}
	if result.Error != "" {
		return "", fmt.Errorf("chat endpoint error: %s", result.Error)
	}
	if result.Message == nil {
		return "", ErrMissingMessage
	}
	if result.Message.Content == nil {
		return "", ErrMissingContent
	}
	return *result.Message.Content, nil
}

func excerpt(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
