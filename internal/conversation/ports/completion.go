// Package ports defines what the conversation module needs from the outside:
// a text-completion backend. Adapters in internal/adapters bind concrete
// clients to it.
package ports

import (
	"context"
	"errors"
)

// Message is one entry of the completion input.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a non-streaming chat completion call.
type CompletionRequest struct {
	Model    string
	Messages []Message
}

// CompletionClient produces the assistant text for a conversation.
type CompletionClient interface {
	// Complete makes exactly one attempt. Any error means no usable text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

var (
	// ErrEmptyResponse means the backend answered without a body.
	ErrEmptyResponse = errors.New("completion backend returned an empty response")
	// ErrUnexpectedResponse means the body lacked the expected message shape.
	ErrUnexpectedResponse = errors.New("completion backend returned an unexpected response")
)
