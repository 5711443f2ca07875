package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSONComponent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: "debug", Format: "json", Writer: &buf}))
	t.Cleanup(func() { _ = Setup(Options{}) })

	logger := Component("engine")
	logger.Debug().Int("steps", 3).Msg("run start")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine", line["component"])
	assert.Equal(t, "run start", line["message"])
	assert.Equal(t, float64(3), line["steps"])
}

func TestSetupLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: "warn", Format: "json", Writer: &buf}))
	t.Cleanup(func() { _ = Setup(Options{}) })

	logger := Component("registry")
	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestSetupRejectsBadOptions(t *testing.T) {
	assert.Error(t, Setup(Options{Level: "loud"}))
	assert.Error(t, Setup(Options{Format: "xml"}))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))
	logger := FromContext(ctx, "repl")
	logger.Info().Msg("ready")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "repl", line["component"])
	assert.Equal(t, "ready", line["message"])

	buf.Reset()
	require.NoError(t, Setup(Options{Level: "info", Format: "json", Writer: &buf}))
	t.Cleanup(func() { _ = Setup(Options{}) })
	logger = FromContext(context.Background(), "tui")
	logger.Info().Msg("fallback")
	assert.Contains(t, buf.String(), `"component":"tui"`)
}
