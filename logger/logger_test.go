package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger("test").WithWriter(&buf).WithLevel(LevelInfo)

	l.Debug("hidden %d", 1)
	l.Info("shown %d", 2)
	l.Error("failed %s", "x")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] test | shown 2")
	assert.Contains(t, out, "[ERROR] test | failed x")
}

func TestDefaultLoggerSilent(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLogger("test").WithWriter(&buf).WithLevel(LevelSilent)
	l.Error("nothing")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{" error ", LevelError},
		{"off", LevelSilent},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Debug("a")
	l.Info("b")
	l.Error("c")
}
