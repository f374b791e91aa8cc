package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"core/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingStore struct {
	items  []model.EmbeddingItem
	errors []string
}

func (f *fakeEmbeddingStore) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	f.items = items
	return len(items) - len(f.errors), f.errors
}

type fakeEmbedder struct {
	enabled bool
	dims    int
	calls   int
}

func (f *fakeEmbedder) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, f.dims)
	}
	return out, nil
}

func (f *fakeEmbedder) IsEnabled() bool { return f.enabled }

func newEmbeddingRouter(store *fakeEmbeddingStore, embedder *fakeEmbedder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/embeddings/batch", NewEmbeddingHandler(store, embedder, 4).BatchUpdate)
	return router
}

func postBatch(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/embeddings/batch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestEmbeddingBatchAcceptsPrecomputedVectors(t *testing.T) {
	store := &fakeEmbeddingStore{}
	embedder := &fakeEmbedder{enabled: true, dims: 4}
	router := newEmbeddingRouter(store, embedder)

	w := postBatch(t, router, `{"embeddings": [{"place_id": 1, "embedding": [0.1, 0.2, 0.3, 0.4]}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, embedder.calls, "precomputed vectors must not trigger generation")
	require.Len(t, store.items, 1)
	assert.Equal(t, int64(1), store.items[0].PlaceID)

	var resp model.EmbeddingBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, 0, resp.Failed)
}

func TestEmbeddingBatchEmbedsRawTextServerSide(t *testing.T) {
	store := &fakeEmbeddingStore{}
	embedder := &fakeEmbedder{enabled: true, dims: 4}
	router := newEmbeddingRouter(store, embedder)

	w := postBatch(t, router, `{"embeddings": [
		{"place_id": 1, "text": "Parque emblemático con esculturas"},
		{"place_id": 2, "embedding": [0.1, 0.2, 0.3, 0.4]}
	]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, embedder.calls)
	require.Len(t, store.items, 2)
	assert.Len(t, store.items[0].Embedding, 4, "text-only item gets a generated vector")
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, store.items[1].Embedding)
}

func TestEmbeddingBatchRejectsWrongDimension(t *testing.T) {
	store := &fakeEmbeddingStore{}
	router := newEmbeddingRouter(store, &fakeEmbedder{enabled: true, dims: 4})

	w := postBatch(t, router, `{"embeddings": [{"place_id": 1, "embedding": [0.1, 0.2]}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, store.items)
}

func TestEmbeddingBatchRejectsItemWithoutVectorOrText(t *testing.T) {
	store := &fakeEmbeddingStore{}
	router := newEmbeddingRouter(store, &fakeEmbedder{enabled: true, dims: 4})

	w := postBatch(t, router, `{"embeddings": [{"place_id": 1}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "neither embedding nor text")
}

func TestEmbeddingBatchRejectsTextWhenModelDisabled(t *testing.T) {
	store := &fakeEmbeddingStore{}
	router := newEmbeddingRouter(store, &fakeEmbedder{enabled: false, dims: 4})

	w := postBatch(t, router, `{"embeddings": [{"place_id": 1, "text": "algo"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, store.items)
}

func TestEmbeddingBatchReportsPartialFailure(t *testing.T) {
	store := &fakeEmbeddingStore{errors: []string{"place_id 2: no such row"}}
	router := newEmbeddingRouter(store, &fakeEmbedder{enabled: true, dims: 4})

	w := postBatch(t, router, `{"embeddings": [
		{"place_id": 1, "embedding": [0.1, 0.2, 0.3, 0.4]},
		{"place_id": 2, "embedding": [0.5, 0.6, 0.7, 0.8]}
	]}`)

	require.Equal(t, http.StatusPartialContent, w.Code)

	var resp model.EmbeddingBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
}
