package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapterWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.DebugLevel)

	log.Info("Criminisi", "fill completed", map[string]interface{}{
		"iterations": 12,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Criminisi", entry["component"])
	assert.Equal(t, "fill completed", entry["message"])
	assert.EqualValues(t, 12, entry["iterations"])
	assert.Equal(t, "info", entry["level"])
}

func TestZerologAdapterError(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Error("Engine", errors.New("boom"), nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "Engine", entry["component"])
}

func TestZerologAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("Engine", "hidden", nil)
	log.Info("Engine", "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warning("Engine", "shown", map[string]interface{}{"cause": errors.New("clipped")})
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "clipped")
}

func TestParseLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")

	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))

	t.Setenv("DEBUG", "1")
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(""))

	t.Setenv("LOG_LEVEL", "error")
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(""))
}
