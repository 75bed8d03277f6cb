package webui

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBuffer_CapturesZerologLines(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := zerolog.New(lb).With().Str("component", "evaluator").Logger()

	logger.Warn().Str("silo_id", "1").Msg("Notification emitted")

	entries := lb.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0].Level)
	assert.Equal(t, "Notification emitted", entries[0].Message)
	assert.Equal(t, "evaluator", entries[0].Component)
	assert.Contains(t, entries[0].Raw, `"silo_id":"1"`)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestLogBuffer_PlainTextLine(t *testing.T) {
	lb := NewLogBuffer(10)

	_, err := lb.Write([]byte("not json\n"))
	require.NoError(t, err)

	entries := lb.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "not json", entries[0].Message)
}

func TestLogBuffer_WrapsAround(t *testing.T) {
	lb := NewLogBuffer(3)
	logger := zerolog.New(lb)

	for i := 0; i < 5; i++ {
		logger.Info().Msg(fmt.Sprintf("line %d", i))
	}

	entries := lb.GetEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "line 2", entries[0].Message)
	assert.Equal(t, "line 4", entries[2].Message)

	recent := lb.GetRecentEntries(2, "")
	require.Len(t, recent, 2)
	assert.Equal(t, "line 3", recent[0].Message)
}

func TestLogBuffer_FilterByLevel(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := zerolog.New(lb)

	logger.Info().Msg("a")
	logger.Error().Msg("b")
	logger.Info().Msg("c")
	logger.Error().Msg("d")

	errs := lb.GetRecentEntries(10, "error")
	require.Len(t, errs, 2)
	assert.Equal(t, "b", errs[0].Message)
	assert.Equal(t, "d", errs[1].Message)
}

func TestLogBuffer_Clear(t *testing.T) {
	lb := NewLogBuffer(3)
	logger := zerolog.New(lb)
	logger.Info().Msg("a")
	lb.Clear()
	assert.Empty(t, lb.GetEntries())
}
