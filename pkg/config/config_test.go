package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)

	assert.Equal(t, 15*time.Second, cfg.Rotation.TickInterval)
	assert.Equal(t, time.Hour, cfg.Rotation.AdOverrideAfter,
		"production default keeps the active caller up for an hour before ads break in")
	assert.Equal(t, 2, cfg.Rotation.AdOverrideCount)

	assert.Equal(t, 60*time.Second, cfg.Refresh.StandardInterval)
	assert.Equal(t, 15*time.Second, cfg.Refresh.FastInterval)
	assert.Equal(t, 4, cfg.Refresh.MaxLoadAttempts)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("not-a-duration", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}
