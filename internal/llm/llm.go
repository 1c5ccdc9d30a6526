package llm

import (
	"context"
	"errors"
)

// Client abstracts text completion providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single non-streaming completion call.
type Request struct {
	Model       string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient stands in when no provider credentials are set.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}
