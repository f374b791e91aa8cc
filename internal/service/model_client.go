package service

import (
	"context"
)

// ModelClient is the interface for the generative-model completion service.
// The pipeline treats it as a black-box text completer with a streaming and a
// blocking mode; streaming delivers a finite, non-restartable fragment
// sequence.
type ModelClient interface {
	// Complete performs a blocking completion and returns the full text.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteStream performs a streaming completion, invoking fn once per
	// text fragment in order. A callback error aborts the stream.
	CompleteStream(ctx context.Context, prompt string, fn func(chunk string) error) error

	// IsEnabled returns whether the client is configured and ready.
	IsEnabled() bool
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

// StreamChunkParser is the interface for provider-specific chunk parsing
type StreamChunkParser interface {
	ParseChunk(data []byte) (*StreamChunk, error)
}
