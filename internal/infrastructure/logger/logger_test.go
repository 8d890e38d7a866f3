package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))

	// Unknown levels default to info
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "warn")

	l.Debug("debug %d", 1)
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	out := buf.String()
	assert.NotContains(t, out, "DEBUG")
	assert.NotContains(t, out, "INFO")
	assert.Contains(t, out, "WARN warn")
	assert.Contains(t, out, "ERROR error")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "error")

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.SetLevel("debug")
	l.Debug("now visible %s", "yes")
	assert.Contains(t, buf.String(), "DEBUG now visible yes")
}
