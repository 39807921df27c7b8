package app

import (
	"bytes"
	"encoding/json"
	"mime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{AppEnv: "production", LogFormat: "json"})
	logger.Debug("hidden")
	logger.Info("route guard denied", "reason", "role-denied")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "production", record["env"])
	assert.Equal(t, "role-denied", record["reason"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerDevelopmentDebug(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, nil).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "env=development")
}

func TestMimeTypesRegistered(t *testing.T) {
	assert.Contains(t, mime.TypeByExtension(".css"), "text/css")
	assert.Equal(t, "image/svg+xml", mime.TypeByExtension(".svg"))
}
