package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelInfo, WithWriter(&buf))

	logger.Info("run failed", "error", "boom")
	assert.Contains(t, buf.String(), "err=boom")
	assert.NotContains(t, buf.String(), "error=")
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelInfo, WithWriter(&buf))

	logger.Debug("transition")
	assert.Empty(t, buf.String())

	logger = New(slog.LevelDebug, WithWriter(&buf))
	logger.Debug("transition")
	assert.Contains(t, buf.String(), "msg=transition")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.LevelInfo, WithWriter(&buf), WithFormat(FormatJSON))
	logger.Info("run finished", "verdict", "Accepted", "error", nil)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "run finished", record["msg"])
	assert.Equal(t, "Accepted", record["verdict"])
	assert.Contains(t, record, "err")
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON} {
		got, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	assert.False(t, NewNop().Enabled(context.Background(), slog.LevelError))
}
