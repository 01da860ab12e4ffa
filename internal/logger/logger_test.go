package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSONFormat(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	var buf bytes.Buffer
	Setup(Config{Level: "debug", Format: FormatJSON, Output: &buf})

	Get().Info().Str("isbn13", "9780306406157").Msg("record processed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "record processed", entry["message"])
	assert.Equal(t, "9780306406157", entry["isbn13"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	var buf bytes.Buffer
	Setup(Config{Level: "warn", Format: FormatJSON, Output: &buf})

	Get().Debug().Msg("not visible")
	Get().Info().Msg("not visible either")
	assert.Empty(t, buf.String())

	Get().Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithComponent(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	var buf bytes.Buffer
	Setup(Config{Level: "info", Format: FormatJSON, Output: &buf})

	Get().WithComponent("goodreads_client").Info().Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "goodreads_client", entry["component"])
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, FormatConsole, ParseLogFormat("console"))
	assert.Equal(t, FormatJSON, ParseLogFormat("json"))
	assert.Equal(t, FormatJSON, ParseLogFormat("unknown"))
}
