package handler

import (
	"context"
	"fmt"
	"net/http"

	"core/internal/model"

	"github.com/gin-gonic/gin"
)

// EmbeddingStore persists embedding vectors for catalog entries.
type EmbeddingStore interface {
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
}

// Embedder turns raw text into embedding vectors.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	IsEnabled() bool
}

// EmbeddingHandler handles embedding-related HTTP requests. Items may carry a
// precomputed vector or raw text; text-only items are embedded server-side
// through the model client.
type EmbeddingHandler struct {
	store      EmbeddingStore
	embedder   Embedder
	dimensions int
}

// NewEmbeddingHandler creates a new embedding handler
func NewEmbeddingHandler(store EmbeddingStore, embedder Embedder, dimensions int) *EmbeddingHandler {
	return &EmbeddingHandler{
		store:      store,
		embedder:   embedder,
		dimensions: dimensions,
	}
}

// BatchUpdate handles POST /api/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	// Collect text-only items for server-side embedding.
	var pending []int
	var texts []string
	for i, item := range req.Embeddings {
		if len(item.Embedding) > 0 {
			continue
		}
		if item.Text == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Item at index %d has neither embedding nor text", i),
			})
			return
		}
		pending = append(pending, i)
		texts = append(texts, item.Text)
	}

	if len(pending) > 0 {
		if !h.embedder.IsEnabled() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Model API is not enabled, cannot embed raw text"})
			return
		}
		vectors, err := h.embedder.CreateEmbeddings(c.Request.Context(), texts)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create embeddings: " + err.Error()})
			return
		}
		for j, i := range pending {
			req.Embeddings[i].Embedding = vectors[j]
		}
	}

	// Validate embedding dimensions
	for i, item := range req.Embeddings {
		if len(item.Embedding) != h.dimensions {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid embedding dimension at index %d, expected %d", i, h.dimensions),
			})
			return
		}
	}

	// Update embeddings
	success, errors := h.store.BatchUpdateEmbeddings(c.Request.Context(), req.Embeddings)

	response := model.EmbeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errors,
	}

	if len(errors) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}
