package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "quizflow", "production", "warn")

	logger.Info().Msg("dropped")
	logger.Warn().Str("quiz_id", "abc").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "quizflow", line["app"])
	assert.Equal(t, "abc", line["quiz_id"])
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "quizflow", "production", "chatty")

	logger.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	logger.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "quizflow", "production", "info")

	nop := FromContext(context.Background())
	nop.Info().Msg("nop")
	assert.Zero(t, buf.Len())

	scoped := FromContext(IntoContext(context.Background(), logger))
	scoped.Info().Msg("scoped")
	assert.Contains(t, buf.String(), "scoped")
}
