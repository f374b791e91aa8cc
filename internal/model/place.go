package model

// PlaceRow is a raw catalog row as returned by schema-introspected queries.
// Keys are column names; values are whatever the driver produced. The context
// builder renders any non-null column, so rows stay schema-agnostic.
type PlaceRow map[string]interface{}

// Place is the structured catalog entry returned to the UI alongside a chat
// response, used to drive the map/listing panel.
type Place struct {
	Name        string  `json:"name" db:"nombre"`
	Description *string `json:"description,omitempty" db:"descripcion"`
	Category    *string `json:"category,omitempty" db:"categoria"`
	ImageURL    *string `json:"imageUrl,omitempty" db:"imagen_url"`
	Location    *string `json:"location,omitempty" db:"ubicacion"`
}

// PlaceImage is one media record associated with a catalog entry.
type PlaceImage struct {
	PlaceName   string  `json:"place_name" db:"nombre"`
	URL         string  `json:"url" db:"url_imagen"`
	Description *string `json:"description,omitempty" db:"descripcion"`
}

// EmbeddingItem carries the embedding update for one catalog entry. Either a
// precomputed vector or the raw text to embed must be present.
type EmbeddingItem struct {
	PlaceID   int64     `json:"place_id" binding:"required"`
	Embedding []float32 `json:"embedding,omitempty"`
	Text      string    `json:"text,omitempty"`
}

// EmbeddingBatchRequest is a batch embedding update request.
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingBatchResponse reports per-batch embedding update results.
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
