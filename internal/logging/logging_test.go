package logging

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("tint"))
	assert.Equal(t, FormatText, ParseFormat("TEXT"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatAuto, ParseFormat("yaml"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestNewHandler_JSONForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, FormatAuto, slog.LevelInfo))

	l.Info("saved", "items", 3)
	l.Debug("hidden")

	assert.Contains(t, buf.String(), `"msg":"saved"`)
	assert.Contains(t, buf.String(), `"items":3`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&buf, FormatText, slog.LevelDebug))

	l.Debug("panel opened", "items", 2)

	assert.Contains(t, buf.String(), "panel opened")
	assert.NotContains(t, buf.String(), `"msg"`)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clipshelf.log")

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteString("line\n")
	assert.NoError(t, err)
}
