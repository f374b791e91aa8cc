package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryEvictsFIFOAtBound(t *testing.T) {
	m := NewConversationMemory(10, 5)

	for i := 0; i < 25; i++ {
		m.Append("caller", fmt.Sprintf("mensaje %d", i), i%2 == 0)
	}

	assert.Equal(t, 10, m.Len("caller"))

	// Only the newest 10 survive; the oldest of them is mensaje 15.
	ctx := m.RenderContext("caller")
	assert.Contains(t, ctx, "mensaje 24")
	assert.NotContains(t, ctx, "mensaje 14")
}

func TestMemoryRendersLastFiveTurns(t *testing.T) {
	m := NewConversationMemory(10, 5)

	for i := 0; i < 8; i++ {
		m.Append("caller", fmt.Sprintf("m%d", i), i%2 == 0)
	}

	ctx := m.RenderContext("caller")
	assert.True(t, strings.HasPrefix(ctx, "CONVERSACIÓN RECIENTE:\n"))
	assert.Equal(t, 5, strings.Count(ctx, ": m"))
	assert.Contains(t, ctx, "Usuario: m4")
	assert.Contains(t, ctx, "Asistente: m7")
	assert.NotContains(t, ctx, "m2")
}

func TestMemoryUnknownCallerRendersEmpty(t *testing.T) {
	m := NewConversationMemory(10, 5)
	assert.Equal(t, "", m.RenderContext("nadie"))
}

func TestMemoryClearAndReset(t *testing.T) {
	m := NewConversationMemory(10, 5)
	m.Append("a", "hola", true)
	m.Append("b", "hola", true)

	m.Clear("a")
	assert.Equal(t, 0, m.Len("a"))
	assert.Equal(t, 1, m.Len("b"))

	m.Reset()
	assert.Equal(t, 0, m.Len("b"))
}
