package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuuvv/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = New("")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))

	_, err = New("verbose")
	require.Error(t, err)
}

func TestWarnAndError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	old := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(old)

	Warn("record skipped", zap.Int("record", 3))
	Error(errors.New("boom"))
	Debug("hidden")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "record skipped", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["record"])
	assert.Equal(t, "boom", entries[1].Message)
}

func TestCastToError(t *testing.T) {
	msg, err := CastToError("plain text")
	require.Error(t, err)
	assert.Equal(t, "plain text", msg)

	cause := errors.New("cause")
	msg, err = CastToError(cause)
	assert.Equal(t, "cause", msg)
	assert.Equal(t, "cause", err.Error())
}
