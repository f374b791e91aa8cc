package service

import (
	"context"
	"log"
	"strings"
)

// User-safe fallback strings for model-call failures, chosen by coarse
// message-substring classification.
const (
	errQuota   = "⚠️ Límite de consultas alcanzado. Intenta con preguntas similares a las anteriores o vuelve mañana."
	errTimeout = "⏰ La respuesta está tomando demasiado tiempo. Intenta con una pregunta más específica."
	errGeneric = "❌ Error al procesar tu mensaje. Por favor, intenta nuevamente o reformula tu pregunta."
)

// ClassifyModelError maps a model-call failure to its user-facing fallback.
func ClassifyModelError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "429"):
		return errQuota
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return errTimeout
	default:
		return errGeneric
	}
}

// StreamRelay drives a model call in streaming or blocking mode, forwarding
// incremental fragments to the caller while accumulating the full text for
// validation. The blocking case is a fragment sequence of length one.
type StreamRelay struct {
	client    ModelClient
	maxChunks int
}

// NewStreamRelay creates a relay capped at maxChunks outbound fragments.
func NewStreamRelay(client ModelClient, maxChunks int) *StreamRelay {
	return &StreamRelay{client: client, maxChunks: maxChunks}
}

// Run executes the completion. When emit is non-nil each fragment is forwarded
// as it arrives, capped at maxChunks; fragments past the cap are dropped. The
// return is the accumulated text and ok=true, or a user-safe failure message
// and ok=false. On a mid-stream failure the message has already been emitted
// as a terminal fragment and no partial text is returned.
func (r *StreamRelay) Run(ctx context.Context, prompt string, emit func(chunk string) error) (string, bool) {
	if emit == nil {
		text, err := r.client.Complete(ctx, prompt)
		if err != nil {
			log.Printf("Model call failed: %v", err)
			return ClassifyModelError(err), false
		}
		return text, true
	}

	var full strings.Builder
	count := 0

	err := r.client.CompleteStream(ctx, prompt, func(chunk string) error {
		if count >= r.maxChunks {
			return nil
		}
		count++
		full.WriteString(chunk)
		return emit(chunk)
	})
	if err != nil {
		log.Printf("Model stream failed: %v", err)
		msg := ClassifyModelError(err)
		if emitErr := emit(msg); emitErr != nil {
			log.Printf("Failed to emit stream error fragment: %v", emitErr)
		}
		return msg, false
	}

	return full.String(), true
}
