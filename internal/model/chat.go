package model

// ChatRequest is the payload of POST /api/chat.
type ChatRequest struct {
	Message    string  `json:"message" binding:"required"`
	Stream     bool    `json:"stream,omitempty"`
	Category   *string `json:"category,omitempty"`
	AutoFilter bool    `json:"auto_filter,omitempty"`
}

// ChatResponse is the non-streaming chat response.
type ChatResponse struct {
	Response        string   `json:"response"`
	Places          []Place  `json:"places"`
	Category        *string  `json:"category,omitempty"`
	PlaceName       *string  `json:"place_name,omitempty"`
	MentionedPlaces []string `json:"mentioned_places,omitempty"`
}

// StreamEvent is one SSE payload in streaming mode. Intermediate events carry
// a chunk with done=false; the terminal event has an empty chunk, done=true
// and the structured result fields.
type StreamEvent struct {
	Chunk           string   `json:"chunk"`
	Done            bool     `json:"done"`
	Places          []Place  `json:"places,omitempty"`
	Category        *string  `json:"category,omitempty"`
	PlaceName       *string  `json:"place_name,omitempty"`
	MentionedPlaces []string `json:"mentioned_places,omitempty"`
}

// ChatResult is the pipeline's structured outcome, shared by both delivery
// modes.
type ChatResult struct {
	Response        string
	Places          []Place
	Category        *string
	PlaceName       *string
	MentionedPlaces []string
}
