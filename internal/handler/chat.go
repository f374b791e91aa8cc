package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles the conversational endpoint.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat handles POST /api/chat in both delivery modes. Pipeline failures are
// delivered as canned response text with a 200 status, never as HTTP errors.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Conversation windows are partitioned by client address.
	callerID := c.ClientIP()

	if req.Stream {
		h.stream(c, req, callerID)
		return
	}

	result := h.chat.Chat(c.Request.Context(), req, callerID, nil)
	c.JSON(http.StatusOK, model.ChatResponse{
		Response:        result.Response,
		Places:          result.Places,
		Category:        result.Category,
		PlaceName:       result.PlaceName,
		MentionedPlaces: result.MentionedPlaces,
	})
}

// stream delivers the response as SSE data events: one {chunk, done:false}
// per fragment, then a terminal {chunk:"", done:true} event carrying the
// structured result.
func (h *ChatHandler) stream(c *gin.Context, req model.ChatRequest, callerID string) {
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	result := h.chat.Chat(c.Request.Context(), req, callerID, func(chunk string) error {
		sendEvent(c, flusher, model.StreamEvent{Chunk: chunk, Done: false})
		return nil
	})

	sendEvent(c, flusher, model.StreamEvent{
		Chunk:           "",
		Done:            true,
		Places:          result.Places,
		Category:        result.Category,
		PlaceName:       result.PlaceName,
		MentionedPlaces: result.MentionedPlaces,
	})
}

// sendEvent writes one SSE data event and flushes it.
func sendEvent(c *gin.Context, flusher http.Flusher, event model.StreamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		fmt.Fprintf(c.Writer, "data: {\"chunk\": \"\", \"done\": true}\n\n")
		flusher.Flush()
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	flusher.Flush()
}
