package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require := require.New(t)

	tests := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warn":    WarnLevel,
		"Warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
	}
	for name, expected := range tests {
		level, err := ParseLevel(name)
		require.NoError(err, name)
		require.Equal(expected, level, name)
	}

	_, err := ParseLevel("verbose")
	require.Error(err)
}

func TestSlogLogger_Level(t *testing.T) {
	t.Setenv("ENV", "")
	require := require.New(t)

	var buf bytes.Buffer
	l := NewSlogWriter(&buf, InfoLevel, false)
	require.Equal(InfoLevel, l.Level())

	l.Debug("hidden")
	require.Zero(buf.Len(), "debug must be filtered at info level")

	l.SetLevel(DebugLevel)
	require.Equal(DebugLevel, l.Level())
	l.Debug("shown", "handle", 1)
	require.NotZero(buf.Len())

	l.SetLevel(ErrorLevel)
	require.Equal(ErrorLevel, l.Level())
}

func TestSlogLogger_JSONOutput(t *testing.T) {
	t.Setenv("ENV", "")
	require := require.New(t)

	var buf bytes.Buffer
	l := NewSlogWriter(&buf, InfoLevel, false).With("pool", "plc")
	l.Warn("discard datagram", "handle", 3)

	record := map[string]any{}
	require.NoError(json.Unmarshal(buf.Bytes(), &record))
	require.Equal("discard datagram", record["msg"])
	require.Equal("WARN", record["level"])
	require.Equal("plc", record["pool"])
	require.InDelta(3, record["handle"], 0)
	require.Contains(record, "ts")
}

func TestSlogLogger_WithSharesLevel(t *testing.T) {
	t.Setenv("ENV", "")
	require := require.New(t)

	var buf bytes.Buffer
	parent := NewSlogWriter(&buf, InfoLevel, false)
	child := parent.With("handle", 0)

	parent.SetLevel(ErrorLevel)
	require.Equal(ErrorLevel, child.Level())

	child.Info("hidden")
	require.Zero(buf.Len())
}
