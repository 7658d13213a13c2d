package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-nirspec/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestJSONRunID(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(&buf, config.LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)

	ctx, id := WithRunID(context.Background())
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, RunID(ctx))

	log.With("band", "J").InfoContext(ctx, "template built", "members", 4)
	log.DebugContext(ctx, "hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "template built", rec["msg"])
	assert.Equal(t, id, rec["run_id"])
	assert.Equal(t, "J", rec["band"])
	assert.EqualValues(t, 4, rec["members"])
}

func TestTextWithoutRunID(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWriter(&buf, config.LoggingConfig{Level: "debug", Format: "text"})
	require.NoError(t, err)

	log.Debug("trial", "i", 50)
	assert.Contains(t, buf.String(), "msg=trial")
	assert.NotContains(t, buf.String(), "run_id")
	assert.Empty(t, RunID(context.Background()))
}

func TestNewErrors(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)

	_, err = New(config.LoggingConfig{Level: "chatty"})
	assert.Error(t, err)
}
