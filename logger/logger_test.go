package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_BeforeInitDiscards(t *testing.T) {
	require.NoError(t, Close())
	l := Get()
	require.NotNil(t, l)
	l.Info("dropped")
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	require.NoError(t, Init(path))
	t.Cleanup(func() { _ = Close() })

	SetDebug(true)
	Component("transcript").Debug("buffer extended", "multiplier", 2)
	SetDebug(false)
	Get().Debug("hidden at info level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "logger initialized")
	assert.Contains(t, out, "component=transcript")
	assert.Contains(t, out, "multiplier=2")
	assert.NotContains(t, out, "hidden at info level")
}

func TestInit_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := Init(filepath.Join(blocker, "sub", "x.log"))
	assert.Error(t, err)
}
