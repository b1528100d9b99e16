package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cihui/internal/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.WithField("purpose", "quiz-definition").Warn("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "quiz-definition", entry["purpose"])
}

func TestNew_Errors(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
	_, err = New(config.LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}

func TestNewFile(t *testing.T) {
	dir := t.TempDir()
	logger, closer, err := NewFile(config.LogConfig{Level: "info", Format: "text"}, dir)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "hello"))
}
