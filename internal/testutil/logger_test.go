package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	logger, rec := NewRecorder(t)

	logger.Debug("parsed", slog.String("file", "A.kt"))
	logger.With(slog.Int("workers", 2)).WithGroup("engine").
		Warn("cache miss", slog.String("root", "B.kt"))

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, slog.LevelDebug, entries[0].Level)
	assert.Equal(t, map[string]string{"file": "A.kt"}, entries[0].Attrs)

	e, ok := rec.Find("cache miss")
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, e.Level)
	assert.Equal(t, map[string]string{"workers": "2", "engine.root": "B.kt"}, e.Attrs)

	_, ok = rec.Find("absent")
	assert.False(t, ok)
}
