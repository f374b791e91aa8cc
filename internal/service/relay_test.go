package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyModelError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"quota text", errors.New("resource quota exhausted"), errQuota},
		{"http 429", errors.New("API request failed with status 429: too many requests"), errQuota},
		{"timeout", errors.New("request timeout"), errTimeout},
		{"context deadline", errors.New("context deadline exceeded"), errTimeout},
		{"anything else", errors.New("boom"), errGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyModelError(tt.err))
		})
	}

	assert.Equal(t, "", ClassifyModelError(nil))
}

func TestRelayBlockingMode(t *testing.T) {
	relay := NewStreamRelay(&fakeModel{text: "respuesta completa"}, 500)

	got, ok := relay.Run(context.Background(), "prompt", nil)
	assert.True(t, ok)
	assert.Equal(t, "respuesta completa", got)
}

func TestRelayBlockingFailureReturnsClassifiedMessage(t *testing.T) {
	relay := NewStreamRelay(&fakeModel{err: errors.New("deadline exceeded")}, 500)

	got, ok := relay.Run(context.Background(), "prompt", nil)
	assert.False(t, ok)
	assert.Equal(t, errTimeout, got)
}

func TestRelayStreamAccumulatesAndForwards(t *testing.T) {
	relay := NewStreamRelay(&fakeModel{chunks: []string{"a", "b", "c"}}, 500)

	var forwarded []string
	got, ok := relay.Run(context.Background(), "prompt", func(chunk string) error {
		forwarded = append(forwarded, chunk)
		return nil
	})

	assert.True(t, ok)
	assert.Equal(t, "abc", got)
	assert.Equal(t, []string{"a", "b", "c"}, forwarded)
}

func TestRelayCapsOutboundFragments(t *testing.T) {
	chunks := make([]string, 10)
	for i := range chunks {
		chunks[i] = "x"
	}
	relay := NewStreamRelay(&fakeModel{chunks: chunks}, 3)

	var forwarded int
	got, ok := relay.Run(context.Background(), "prompt", func(chunk string) error {
		forwarded++
		return nil
	})

	assert.True(t, ok)
	assert.Equal(t, 3, forwarded)
	assert.Equal(t, "xxx", got, "fragments past the cap are dropped from the accumulated text too")
}

func TestRelayStreamFailureEmitsSingleTerminalFragment(t *testing.T) {
	relay := NewStreamRelay(&fakeModel{err: errors.New("429")}, 500)

	var forwarded []string
	got, ok := relay.Run(context.Background(), "prompt", func(chunk string) error {
		forwarded = append(forwarded, chunk)
		return nil
	})

	assert.False(t, ok)
	require.Len(t, forwarded, 1)
	assert.Equal(t, errQuota, forwarded[0])
	assert.Equal(t, errQuota, got)
}
