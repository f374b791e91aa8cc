package service

import (
	"encoding/json"
	"strings"
)

// GeminiStreamChunkParser parses chunks from Gemini's OpenAI-compatibility
// endpoint. The shape matches the standard format except that finish_reason
// may arrive as "STOP" in upper case and content can ride on message instead
// of delta in the final chunk.
type GeminiStreamChunkParser struct{}

// ParseChunk converts a Gemini-compat chunk to generic StreamChunk
func (p *GeminiStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var rawChunk struct {
		Choices []struct {
			Delta struct {
				Role    string `json:"role,omitempty"`
				Content string `json:"content,omitempty"`
			} `json:"delta"`
			Message struct {
				Content string `json:"content,omitempty"`
			} `json:"message"`
			FinishReason string `json:"finish_reason,omitempty"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(data, &rawChunk); err != nil {
		return nil, err
	}

	chunk := &StreamChunk{}
	if len(rawChunk.Choices) > 0 {
		choice := rawChunk.Choices[0]
		chunk.Role = choice.Delta.Role
		chunk.Content = choice.Delta.Content
		if chunk.Content == "" {
			chunk.Content = choice.Message.Content
		}
		chunk.Done = choice.FinishReason != ""
	}

	return chunk, nil
}

// IsGeminiProvider checks if the base URL is the Gemini OpenAI-compat API
func IsGeminiProvider(baseURL string) bool {
	return strings.Contains(baseURL, "generativelanguage.googleapis.com")
}
