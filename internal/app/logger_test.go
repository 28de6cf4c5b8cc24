package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newLogger(&Config{LogFormat: "json", AppEnv: "production"}, buf)
	logger.Debug("hidden")
	logger.Info("poll", slog.String("site", "Vikhroli"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "poll", entry["msg"])
	assert.Equal(t, "Vikhroli", entry["site"])
	assert.Contains(t, entry, "source")
}

func TestNewLoggerTextDebugOutsideProduction(t *testing.T) {
	buf := &bytes.Buffer{}
	newLogger(&Config{AppEnv: "development"}, buf).Debug("primed")
	assert.Contains(t, buf.String(), "msg=primed")
}
