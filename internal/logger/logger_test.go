package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLevelAndFields(t *testing.T) {
	// Arrange
	var buffer bytes.Buffer
	Configure(Config{Level: "warn", Output: &buffer})
	defer Configure(Config{})

	// Act
	Info().Msg("hidden")
	Warn().Str("outcome", "infeasible").Msg("plan")

	// Assert
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buffer.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "infeasible", entry["outcome"])
	assert.Equal(t, "plan", entry["message"])
	assert.NotContains(t, buffer.String(), "hidden")
}

func TestConfigureUnknownLevelFallsBackToInfo(t *testing.T) {
	var buffer bytes.Buffer
	Configure(Config{Level: "chatty", Output: &buffer})
	defer Configure(Config{})

	Debug().Msg("hidden")
	child := With("request_id", "abc")
	child.Info().Msg("shown")

	assert.NotContains(t, buffer.String(), "hidden")
	assert.Contains(t, buffer.String(), `"request_id":"abc"`)
}
