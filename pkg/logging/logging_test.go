package logging

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{7, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFor(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestGetLogFilePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	got := getLogFilePath()
	assert.Equal(t, filepath.Join(dir, "jsploader", "jsploader.log"), got)
}

func TestSetupLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state", "jsploader.log")

	f, err := setupLogFile(path)
	assert.NoError(t, err)
	defer f.Close()
	assert.FileExists(t, path)
}

func TestGetLogger(t *testing.T) {
	buf := captureLogs(t)

	logger := GetLogger("materialise")
	logger.Info().Msg("test message")

	assert.Contains(t, buf.String(), `"component":"materialise"`)
	assert.Contains(t, buf.String(), "test message")
}

func TestWithFields(t *testing.T) {
	buf := captureLogs(t)

	logger := WithFields(map[string]interface{}{
		"realm": "online",
		"count": 42,
	})
	logger.Info().Msg("with fields")

	assert.Contains(t, buf.String(), `"realm":"online"`)
	assert.Contains(t, buf.String(), `"count":42`)
}

func TestLogDuration(t *testing.T) {
	buf := captureLogs(t)

	LogDuration(time.Now().Add(-5*time.Second), "test-operation")

	assert.Contains(t, buf.String(), "test-operation")
	assert.Contains(t, buf.String(), "duration")
}

func TestLogOperationStart(t *testing.T) {
	buf := captureLogs(t)

	done := LogOperationStart(log.Logger, "load")
	assert.Contains(t, buf.String(), "Operation started")
	done()
	assert.Contains(t, buf.String(), "Operation completed")
}
