package service

import (
	"strings"
	"sync"
	"time"
)

// Turn is one exchange unit in a caller's conversation window.
type Turn struct {
	Text      string
	IsUser    bool
	Timestamp time.Time
}

// ConversationMemory keeps a bounded per-caller rolling window of turns.
// Windows are created lazily on first append and evict FIFO past the bound.
type ConversationMemory struct {
	mu           sync.Mutex
	windows      map[string][]Turn
	maxTurns     int
	contextTurns int
}

// NewConversationMemory creates conversation memory bounded to maxTurns per
// caller, rendering the last contextTurns into prompt context.
func NewConversationMemory(maxTurns, contextTurns int) *ConversationMemory {
	return &ConversationMemory{
		windows:      make(map[string][]Turn),
		maxTurns:     maxTurns,
		contextTurns: contextTurns,
	}
}

// Append records one turn for the caller, evicting the oldest past the bound.
func (m *ConversationMemory) Append(callerID, text string, isUser bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	window := append(m.windows[callerID], Turn{
		Text:      text,
		IsUser:    isUser,
		Timestamp: time.Now(),
	})
	if len(window) > m.maxTurns {
		window = window[len(window)-m.maxTurns:]
	}
	m.windows[callerID] = window
}

// RenderContext renders the caller's recent turns as role-prefixed lines.
// Unknown callers render as an empty string.
func (m *ConversationMemory) RenderContext(callerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	window, ok := m.windows[callerID]
	if !ok || len(window) == 0 {
		return ""
	}

	recent := window
	if len(recent) > m.contextTurns {
		recent = recent[len(recent)-m.contextTurns:]
	}

	var b strings.Builder
	b.WriteString("CONVERSACIÓN RECIENTE:\n")
	for _, turn := range recent {
		if turn.Text == "" {
			continue
		}
		role := "Asistente"
		if turn.IsUser {
			role = "Usuario"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// Clear drops the caller's window.
func (m *ConversationMemory) Clear(callerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, callerID)
}

// Reset drops every caller's window.
func (m *ConversationMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = make(map[string][]Turn)
}

// Len returns the number of turns currently held for the caller.
func (m *ConversationMemory) Len(callerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows[callerID])
}
