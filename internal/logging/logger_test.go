package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, FormatConsole, cfg.Format)
	assert.NotNil(t, cfg.Output)
	assert.False(t, cfg.Caller)
}

func TestValidLevels(t *testing.T) {
	t.Parallel()

	for _, level := range ValidLevels() {
		assert.Equal(t, level != "info", ParseLevel(level) != zerolog.InfoLevel, level)
	}
	assert.NotContains(t, ValidLevels(), "verbose")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"off", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

// Init mutates global state, so these tests do not run in parallel.
func TestInit(t *testing.T) {
	defer Init(DefaultConfig())

	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: "debug", Format: FormatJSON, Output: &buf})

		Debug().Str("entity_id", "sensor.temp").Msg("fetching history")

		out := buf.String()
		assert.Contains(t, out, `"level":"debug"`)
		assert.Contains(t, out, `"entity_id":"sensor.temp"`)
		assert.Contains(t, out, "fetching history")
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: "warn", Format: FormatJSON, Output: &buf})

		Info().Msg("hidden")
		Warn().Msg("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("console output", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: "info", Format: FormatConsole, Output: &buf})

		Warn().Err(errors.New("boom")).Msg("request failed")

		out := buf.String()
		require.NotEmpty(t, out)
		assert.Contains(t, out, "request failed")
		assert.Contains(t, out, "boom")
		assert.NotContains(t, out, `"level"`)
	})
}
