package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-subtitler/internal/app/model"
)

const limitsYAML = `
defaults:
  max_videos: 5
  max_duration_minutes: 20
  max_file_size_mb: 250
  allowed_extensions: [".mp4", ".mov"]
overrides:
  power_user:
    max_videos: 100
    max_duration_minutes: 300
    max_file_size_mb: 2048
    allowed_extensions: [".mp4", ".mov", ".mkv"]
`

func writeLimits(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMissingFileUsesBuiltinDefaults(t *testing.T) {
	store, err := NewLimitsStore(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	limits := store.EffectiveLimits("anyone")
	assert.Equal(t, 10, limits.MaxVideos)
	assert.Equal(t, 500.0, limits.MaxFileSizeMB)
	assert.Contains(t, limits.AllowedExtensions, ".mkv")
}

func TestEffectiveLimitsPrefersOverride(t *testing.T) {
	store, err := NewLimitsStore(writeLimits(t, limitsYAML))
	require.NoError(t, err)

	regular := store.EffectiveLimits("regular_user")
	assert.Equal(t, 5, regular.MaxVideos)

	// The override replaces the defaults wholesale.
	power := store.EffectiveLimits("power_user")
	assert.Equal(t, 100, power.MaxVideos)
	assert.Equal(t, 300.0, power.MaxDurationMinutes)
	assert.Contains(t, power.AllowedExtensions, ".mkv")
}

func TestReloadPicksUpChanges(t *testing.T) {
	path := writeLimits(t, limitsYAML)
	store, err := NewLimitsStore(path)
	require.NoError(t, err)
	assert.Equal(t, 5, store.EffectiveLimits("x").MaxVideos)

	updated := `
defaults:
  max_videos: 7
  max_duration_minutes: 20
  max_file_size_mb: 250
  allowed_extensions: [".mp4"]
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	require.NoError(t, store.Reload())

	assert.Equal(t, 7, store.EffectiveLimits("x").MaxVideos)
}

func TestReloadRejectsInvalidDocument(t *testing.T) {
	path := writeLimits(t, limitsYAML)
	store, err := NewLimitsStore(path)
	require.NoError(t, err)

	bad := `
defaults:
  max_videos: 0
  max_duration_minutes: 20
  max_file_size_mb: 250
  allowed_extensions: [".mp4"]
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))
	require.Error(t, store.Reload())

	// The previous document stays in effect.
	assert.Equal(t, 5, store.EffectiveLimits("x").MaxVideos)
}

func TestSetOverridePersists(t *testing.T) {
	path := writeLimits(t, limitsYAML)
	store, err := NewLimitsStore(path)
	require.NoError(t, err)

	custom := model.Limits{
		MaxVideos:          50,
		MaxDurationMinutes: 120,
		MaxFileSizeMB:      1024,
		AllowedExtensions:  []string{".mp4"},
	}
	require.NoError(t, store.SetOverride("vip", custom))

	reopened, err := NewLimitsStore(path)
	require.NoError(t, err)
	assert.Equal(t, 50, reopened.EffectiveLimits("vip").MaxVideos)

	require.NoError(t, reopened.RemoveOverride("vip"))
	assert.Equal(t, 5, reopened.EffectiveLimits("vip").MaxVideos)
}

func TestSetOverrideValidates(t *testing.T) {
	store, err := NewLimitsStore(filepath.Join(t.TempDir(), "limits.yaml"))
	require.NoError(t, err)

	err = store.SetOverride("vip", model.Limits{MaxVideos: -1})
	assert.Error(t, err)
}
