package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"core/internal/config"
	"core/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory CatalogStore for pipeline tests.
type fakeStore struct {
	mu       sync.Mutex
	columns  []string
	rows     []model.PlaceRow
	images   []model.PlaceImage
	names    []string
	places   []model.Place
	failRows bool
	logged   int
}

func (f *fakeStore) ColumnNames(ctx context.Context) ([]string, error) {
	if f.failRows {
		return nil, errors.New("store down")
	}
	return f.columns, nil
}

func (f *fakeStore) ListPlaceRows(ctx context.Context, category string) ([]model.PlaceRow, error) {
	if f.failRows {
		return nil, errors.New("store down")
	}
	return f.rows, nil
}

func (f *fakeStore) ListImages(ctx context.Context) ([]model.PlaceImage, error) {
	return f.images, nil
}

func (f *fakeStore) ListPlaceNames(ctx context.Context) ([]string, error) {
	return f.names, nil
}

func (f *fakeStore) FilterPlaces(ctx context.Context, category, placeName string, mentioned []string) ([]model.Place, error) {
	return f.places, nil
}

func (f *fakeStore) LogChat(ctx context.Context, chatID, message, response string, category, placeName *string, mentioned []string, tookMs int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged++
	return nil
}

// fakeModel is a scripted ModelClient that counts invocations.
type fakeModel struct {
	mu     sync.Mutex
	text   string
	err    error
	calls  int
	chunks []string
}

func (f *fakeModel) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.text, f.err
}

func (f *fakeModel) CompleteStream(ctx context.Context, prompt string, fn func(chunk string) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	chunks := f.chunks
	if chunks == nil {
		chunks = []string{f.text}
	}
	for _, c := range chunks {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeModel) IsEnabled() bool { return true }

func (f *fakeModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testPipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		ContextCacheTTL:  300,
		ResponseCacheTTL: 3600,
		MaxDailyRequests: 45,
		MaxTurns:         10,
		ContextTurns:     5,
		MaxStreamChunks:  500,
	}
}

func populatedStore() *fakeStore {
	desc := func(s string) *string { return &s }
	return &fakeStore{
		columns: []string{"id", "nombre", "descripcion", "latitud", "longitud", "categoria"},
		rows: []model.PlaceRow{
			{"id": int64(1), "nombre": "Parque de la Identidad", "descripcion": "Parque emblemático", "latitud": -12.055, "longitud": -75.205, "categoria": "Parque"},
			{"id": int64(2), "nombre": "Torre Torre", "descripcion": "Formaciones geológicas", "latitud": -12.06, "longitud": -75.19, "categoria": "Naturaleza"},
			{"id": int64(3), "nombre": "Plaza Constitución", "descripcion": "Plaza principal", "latitud": -12.065, "longitud": -75.21, "categoria": "Parque"},
		},
		names: []string{"Parque de la Identidad", "Torre Torre", "Plaza Constitución"},
		places: []model.Place{
			{Name: "Torre Torre", Description: desc("Formaciones geológicas")},
		},
	}
}

func TestChatEmptyCatalogNeverCallsModel(t *testing.T) {
	store := &fakeStore{
		columns: []string{"id", "nombre"},
		rows:    nil,
	}
	client := &fakeModel{text: "should never appear"}
	svc := NewChatService(store, client, testPipelineConfig())

	result := svc.Chat(context.Background(), model.ChatRequest{Message: "¿Qué lugares hay?"}, "caller-1", nil)

	assert.Equal(t, 0, client.callCount(), "model must not be invoked with an empty catalog")
	assert.Contains(t, result.Response, "Actualmente no tengo lugares registrados")
	assert.NotContains(t, result.Response, "should never appear")
}

func TestChatStoreUnavailableNeverCallsModel(t *testing.T) {
	store := &fakeStore{failRows: true}
	client := &fakeModel{text: "should never appear"}
	svc := NewChatService(store, client, testPipelineConfig())

	result := svc.Chat(context.Background(), model.ChatRequest{Message: "hola"}, "caller-1", nil)

	assert.Equal(t, 0, client.callCount())
	assert.Contains(t, result.Response, "no tengo datos listos para mostrar")
}

func TestChatValidatedResponseIsCachedAndRemembered(t *testing.T) {
	store := populatedStore()
	client := &fakeModel{text: "Visita [[Torre Torre]], es impresionante."}
	svc := NewChatService(store, client, testPipelineConfig())

	result := svc.Chat(context.Background(), model.ChatRequest{Message: "¿Qué me recomiendas?"}, "caller-1", nil)

	require.Equal(t, 1, client.callCount())
	assert.Equal(t, "Visita Torre Torre, es impresionante.", result.Response)
	assert.Equal(t, []string{"Torre Torre"}, result.MentionedPlaces)
	require.NotNil(t, result.PlaceName)
	assert.Equal(t, "Torre Torre", *result.PlaceName)

	// Second identical question is served from cache without a model call.
	again := svc.Chat(context.Background(), model.ChatRequest{Message: " ¿qué me recomiendas? "}, "caller-1", nil)
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, result.Response, again.Response)

	// Both exchanges are in the caller's window.
	assert.Equal(t, 4, svc.memory.Len("caller-1"))
}

func TestChatDailyLimitShortCircuits(t *testing.T) {
	store := populatedStore()
	client := &fakeModel{text: "ok"}
	cfg := testPipelineConfig()
	cfg.MaxDailyRequests = 0
	svc := NewChatService(store, client, cfg)

	result := svc.Chat(context.Background(), model.ChatRequest{Message: "hola"}, "caller-1", nil)

	assert.Equal(t, 0, client.callCount())
	assert.Contains(t, result.Response, "límite diario de consultas")
}

func TestChatFabricatedEntityReplacedByFallback(t *testing.T) {
	store := populatedStore()
	client := &fakeModel{text: "Te recomiendo [[Plaza Imaginaria]] sin duda."}
	svc := NewChatService(store, client, testPipelineConfig())

	result := svc.Chat(context.Background(), model.ChatRequest{Message: "recomiéndame algo"}, "caller-1", nil)

	assert.NotContains(t, result.Response, "[[")
	assert.NotContains(t, result.Response, "Plaza Imaginaria")
	assert.Contains(t, result.Response, "Parque de la Identidad")
}

func TestChatStreamingDeliversChunksAndResult(t *testing.T) {
	store := populatedStore()
	client := &fakeModel{chunks: []string{"Visita ", "[[Torre Torre]]", " hoy."}}
	svc := NewChatService(store, client, testPipelineConfig())

	var streamed []string
	result := svc.Chat(context.Background(), model.ChatRequest{Message: "dónde voy", Stream: true}, "caller-1", func(chunk string) error {
		streamed = append(streamed, chunk)
		return nil
	})

	assert.Equal(t, []string{"Visita ", "[[Torre Torre]]", " hoy."}, streamed)
	assert.Equal(t, "Visita Torre Torre hoy.", result.Response)
	assert.Equal(t, []string{"Torre Torre"}, result.MentionedPlaces)
}

func TestChatStreamFailureEmitsTerminalErrorFragment(t *testing.T) {
	store := populatedStore()
	client := &fakeModel{err: errors.New("429 quota exceeded")}
	svc := NewChatService(store, client, testPipelineConfig())

	var streamed []string
	result := svc.Chat(context.Background(), model.ChatRequest{Message: "dónde voy", Stream: true}, "caller-1", func(chunk string) error {
		streamed = append(streamed, chunk)
		return nil
	})

	require.Len(t, streamed, 1)
	assert.Contains(t, streamed[0], "Límite de consultas alcanzado")
	assert.Equal(t, streamed[0], result.Response)

	// Failed responses are never cached.
	_, ok := svc.cache.Get("dónde voy")
	assert.False(t, ok)
}

func TestChatShowAllClearsCategory(t *testing.T) {
	store := populatedStore()
	client := &fakeModel{text: "Aquí tienes [[Torre Torre]]."}
	svc := NewChatService(store, client, testPipelineConfig())

	cat := "Parque"
	result := svc.Chat(context.Background(), model.ChatRequest{Message: "mostrar todos los lugares", Category: &cat}, "caller-1", nil)

	assert.Nil(t, result.Category)
	snap := svc.contexts.Context(context.Background(), "", "")
	assert.Equal(t, "", snap.Category)
}

func TestChatResetClearsState(t *testing.T) {
	store := populatedStore()
	client := &fakeModel{text: "Visita [[Torre Torre]]."}
	svc := NewChatService(store, client, testPipelineConfig())

	svc.Chat(context.Background(), model.ChatRequest{Message: "hola"}, "caller-1", nil)
	require.Equal(t, 1, svc.CacheSize())

	svc.Reset()

	assert.Equal(t, 0, svc.CacheSize())
	assert.Equal(t, 0, svc.memory.Len("caller-1"))
	used, _ := svc.DailyRequests()
	assert.Equal(t, 0, used)
}

func TestHasShowAllPhrase(t *testing.T) {
	assert.True(t, hasShowAllPhrase("quiero Ver Todos los sitios"))
	assert.False(t, hasShowAllPhrase("quiero ver el parque"))
}

func TestEmitWordsSplitsOnWhitespace(t *testing.T) {
	var got []string
	emitWords("hola  mundo\ncruel", func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	assert.Equal(t, []string{"hola ", "mundo ", "cruel "}, got)
	assert.Equal(t, "hola mundo cruel", strings.TrimSpace(strings.Join(got, "")))
}
