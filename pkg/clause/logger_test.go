package clause

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogDebug},
		{"INFO", LogInfo},
		{"warn", LogWarn},
		{"warning", LogWarn},
		{" error ", LogError},
		{"off", LogOff},
		{"verbose", LogInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info")
	logger.Warn("warn %s", "here")
	logger.Error("boom")

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "[INFO]")
	assert.Contains(t, out, "[WARN] warn here")
	assert.Contains(t, out, "[ERROR] boom")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, LogInfo)
	derived := base.WithField("template", "t1").WithFields(Fields{"answers": 2})

	derived.Info("Rendered")
	assert.Contains(t, buf.String(), "[INFO] Rendered answers=2 template=t1")

	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "template=")
}

func TestLoggerSharesLevelWithDerived(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, LogInfo)
	derived := base.WithField("k", "v")

	base.SetLevel(LogOff)
	derived.Error("silenced")
	assert.Empty(t, buf.String())
	assert.False(t, derived.IsDebugMode())

	base.SetLevel(LogDebug)
	assert.True(t, derived.IsDebugMode())
	derived.DebugMarkers("{{COND:a}}", Answers{"s": "x"})
	assert.Contains(t, buf.String(), "Template: {{COND:a}}")
	assert.Contains(t, buf.String(), "Answers: map[s:x]")
}

func TestGlobalLogger(t *testing.T) {
	previous := GetLogger()
	defer SetLogger(previous)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogInfo))
	WithField("id", 7).Info("global")
	Debug("hidden")
	assert.Contains(t, buf.String(), "[INFO] global id=7")
	assert.NotContains(t, buf.String(), "hidden")

	SetLogger(nil)
	assert.Equal(t, LogOff, GetLogger().Level())
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Error("nothing")
	assert.Equal(t, LogOff, logger.Level())
	assert.Equal(t, "OFF", logger.Level().String())
}
