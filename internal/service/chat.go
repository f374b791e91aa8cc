package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"core/internal/config"
	"core/internal/model"

	"github.com/google/uuid"
)

const dailyLimitMessage = "⚠️ Hemos alcanzado el límite diario de consultas. " +
	"Por favor, intenta nuevamente mañana o prueba con preguntas similares que ya hayan sido respondidas."

const storeUnavailableMessage = "En este momento no tengo datos listos para mostrar. " +
	"Ahora contamos con la columna de categoría para filtrar mejor. " +
	"Dime una categoría (por ejemplo: Parques, Patrimonio, Naturaleza, Centro Comercial, Estadio) " +
	"o escribe \"mostrar todos\" para ver todo el listado."

const suggestedCategories = "* Parques\n* Plazas\n* Miradores\n* Iglesias\n* Museos\n* Mercados\n"

// showAllPhrases clear any active category filter when present in the
// utterance.
var showAllPhrases = []string{"todos los lugares", "mostrar todos", "todos los sitios", "ver todos"}

// ChatService runs the grounded-response pipeline. It owns the process-scoped
// mutable state (snapshot cache, response cache, conversation memory, daily
// request counter); Reset restores all of it to its initial state.
type ChatService struct {
	store     CatalogStore
	client    ModelClient
	contexts  *ContextBuilder
	intents   *IntentDetector
	memory    *ConversationMemory
	cache     *ResponseCache
	relay     *StreamRelay
	prompts   *PromptAssembler
	validator *ResponseValidator

	maxDaily      int
	mu            sync.Mutex
	dailyRequests int
}

// NewChatService wires the pipeline components around the store and model
// client.
func NewChatService(store CatalogStore, client ModelClient, cfg *config.PipelineConfig) *ChatService {
	return &ChatService{
		store:     store,
		client:    client,
		contexts:  NewContextBuilder(store, time.Duration(cfg.ContextCacheTTL)*time.Second),
		intents:   NewIntentDetector(store),
		memory:    NewConversationMemory(cfg.MaxTurns, cfg.ContextTurns),
		cache:     NewResponseCache(time.Duration(cfg.ResponseCacheTTL) * time.Second),
		relay:     NewStreamRelay(client, cfg.MaxStreamChunks),
		prompts:   NewPromptAssembler(),
		validator: NewResponseValidator(),
		maxDaily:  cfg.MaxDailyRequests,
	}
}

// Chat answers one utterance. emit, when non-nil, receives incremental
// fragments for streaming delivery; the returned result is complete in both
// modes. Never returns an error: every failure path degrades to a canned or
// synthesized response.
func (s *ChatService) Chat(ctx context.Context, req model.ChatRequest, callerID string, emit func(chunk string) error) *model.ChatResult {
	start := time.Now()

	category := ""
	if req.Category != nil {
		category = *req.Category
	}
	if req.Category == nil || req.AutoFilter {
		category = s.intents.DetectCategory(req.Message)
	}

	placeName := ""
	if req.AutoFilter {
		placeName = s.intents.DetectPlace(req.Message)
	}

	if s.overDailyLimit() {
		return s.canned(dailyLimitMessage, nil, category, placeName, emit)
	}

	if cached, ok := s.cache.Get(req.Message); ok {
		s.memory.Append(callerID, req.Message, true)
		s.memory.Append(callerID, cached, false)
		mentioned := ExtractPlaces(cached, s.intents.KnownNames(ctx))
		result := s.assembleResult(ctx, cached, category, placeName, mentioned)
		emitWords(cached, emit)
		return result
	}

	if hasShowAllPhrase(req.Message) {
		category = ""
	}

	snapshot := s.contexts.Context(ctx, category, placeName)

	// Empty grounded set: answer from a canned message without ever
	// reaching the model.
	if len(snapshot.Names) == 0 {
		msg := noDataMessage(snapshot, category)
		s.memory.Append(callerID, req.Message, true)
		s.memory.Append(callerID, msg, false)
		places := s.lookupPlaces(ctx, category, placeName, nil)
		result := &model.ChatResult{
			Response:  msg,
			Places:    places,
			Category:  optional(category),
			PlaceName: optional(placeName),
		}
		emitWords(msg, emit)
		return result
	}

	prompt := s.prompts.Build(snapshot.Text, s.memory.RenderContext(callerID), req.Message)

	s.countRequest()

	raw, ok := s.relay.Run(ctx, prompt, emit)
	if !ok {
		// The relay already delivered the user-safe failure message in
		// streaming mode; nothing is cached or remembered.
		return &model.ChatResult{
			Response:  raw,
			Places:    []model.Place{},
			Category:  optional(category),
			PlaceName: optional(placeName),
		}
	}

	validated := s.validator.Validate(raw, snapshot)

	mentioned := ExtractPlaces(validated, s.intents.KnownNames(ctx))

	s.cache.Put(req.Message, validated)
	s.memory.Append(callerID, req.Message, true)
	s.memory.Append(callerID, validated, false)

	result := s.assembleResult(ctx, validated, category, placeName, mentioned)

	s.logChat(ctx, req.Message, result, time.Since(start))

	return result
}

// ClearCaller drops the response cache and the caller's conversation window.
func (s *ChatService) ClearCaller(callerID string) {
	s.cache.Clear()
	s.memory.Clear(callerID)
}

// Reset restores all process-scoped pipeline state: snapshot cache, response
// cache, every conversation window and the daily counter.
func (s *ChatService) Reset() {
	s.contexts.Invalidate()
	s.cache.Clear()
	s.memory.Reset()
	s.mu.Lock()
	s.dailyRequests = 0
	s.mu.Unlock()
}

// CacheSize returns the number of cached answers.
func (s *ChatService) CacheSize() int {
	return s.cache.Len()
}

// DailyRequests returns the consumed share of the daily budget.
func (s *ChatService) DailyRequests() (used, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyRequests, s.maxDaily
}

func (s *ChatService) overDailyLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyRequests >= s.maxDaily
}

// countRequest consumes one unit of the daily budget. There is no calendar
// rollover: the counter only resets on Reset or process restart.
func (s *ChatService) countRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyRequests++
}

// assembleResult resolves the structured place list for the UI. Mentioned
// places take priority over the detected name filter; the first mention
// becomes the displayed place when none was detected.
func (s *ChatService) assembleResult(ctx context.Context, response, category, placeName string, mentioned []string) *model.ChatResult {
	places := s.lookupPlaces(ctx, category, placeName, mentioned)
	if len(mentioned) > 0 && placeName == "" {
		placeName = mentioned[0]
	}
	return &model.ChatResult{
		Response:        response,
		Places:          places,
		Category:        optional(category),
		PlaceName:       optional(placeName),
		MentionedPlaces: mentioned,
	}
}

func (s *ChatService) lookupPlaces(ctx context.Context, category, placeName string, mentioned []string) []model.Place {
	var (
		places []model.Place
		err    error
	)
	if len(mentioned) > 0 {
		places, err = s.store.FilterPlaces(ctx, category, "", mentioned)
	} else {
		places, err = s.store.FilterPlaces(ctx, category, placeName, nil)
	}
	if err != nil {
		log.Printf("Warning: failed to filter places: %v", err)
		return []model.Place{}
	}
	if places == nil {
		places = []model.Place{}
	}
	return places
}

func (s *ChatService) canned(msg string, places []model.Place, category, placeName string, emit func(chunk string) error) *model.ChatResult {
	if places == nil {
		places = []model.Place{}
	}
	emitWords(msg, emit)
	return &model.ChatResult{
		Response:  msg,
		Places:    places,
		Category:  optional(category),
		PlaceName: optional(placeName),
	}
}

func (s *ChatService) logChat(ctx context.Context, message string, result *model.ChatResult, took time.Duration) {
	err := s.store.LogChat(ctx, uuid.NewString(), message, result.Response,
		result.Category, result.PlaceName, result.MentionedPlaces, int(took.Milliseconds()))
	if err != nil {
		log.Printf("Warning: failed to log chat: %v", err)
	}
}

// noDataMessage picks the canned reply for a snapshot with no grounded names,
// keyed on whether the store was reachable at all.
func noDataMessage(snapshot *model.CatalogSnapshot, category string) string {
	if snapshot.Status == model.SnapshotUnavailable {
		return storeUnavailableMessage
	}
	if category != "" {
		return "No encontré lugares en la categoría \"" + category + "\" en mi base de datos actual. " +
			"Te sugiero probar con estas categorías populares:\n" + suggestedCategories +
			"¿Te gustaría que busque en alguna de estas categorías?"
	}
	return "Actualmente no tengo lugares registrados en mi base de datos. " +
		"Te sugiero probar con estas categorías populares:\n" + suggestedCategories +
		"¿Qué tipo de lugar te gustaría conocer?"
}

func hasShowAllPhrase(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range showAllPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// emitWords streams a canned message word by word so cached and fallback
// answers look the same to a streaming client as generated ones.
func emitWords(text string, emit func(chunk string) error) {
	if emit == nil {
		return
	}
	for _, word := range strings.Fields(text) {
		if err := emit(word + " "); err != nil {
			return
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
