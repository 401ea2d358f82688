package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, *parseLevel("debug"))
	require.Equal(t, zapcore.WarnLevel, *parseLevel("warn"))
	require.Nil(t, parseLevel("verbose"))
}

func TestNew(t *testing.T) {
	l, err := New("debug", false)
	require.NoError(t, err)
	require.NotNil(t, l)

	l, err = New("", true)
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With(String("component", "storage"))

	l.Warn("snapshot discarded", Error(errors.New("bad json")), Int("bytes", 12))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "snapshot discarded", entries[0].Message)
	ctx := entries[0].ContextMap()
	require.Equal(t, "storage", ctx["component"])
	require.Equal(t, int64(12), ctx["bytes"])
	require.Equal(t, "bad json", ctx["error"])
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("ignored", Bool("ok", true), Float64("x", 1.5))
	require.NoError(t, l.Sync())
}
