package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-subtitler/internal/app/model"
)

func writeVideoDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("video bytes"), 0o644))
	}
	return dir
}

func TestProcessDirectoryTranscribesEveryVideo(t *testing.T) {
	f := newFixture(t)
	dir := writeVideoDir(t, "a.mp4", "b.mov", "notes.txt")

	batch := NewBatchProcessor(f.coord, nil)
	report, err := batch.ProcessDirectory(context.Background(), dir, BatchOptions{
		Identity: "alice",
		Provider: "stub",
		Parallel: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Empty(t, report.Failures)

	usage, err := f.coord.GetUsage("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, usage.VideosCount)

	// Both files got an original transcript.
	assert.FileExists(t, f.ws.OriginalSubtitlePath("file0001"))
	assert.FileExists(t, f.ws.OriginalSubtitlePath("file0002"))
}

func TestProcessDirectoryWithTranslateAndEmbed(t *testing.T) {
	f := newFixture(t)
	dir := writeVideoDir(t, "a.mp4")

	batch := NewBatchProcessor(f.coord, nil)
	report, err := batch.ProcessDirectory(context.Background(), dir, BatchOptions{
		Identity:       "alice",
		Provider:       "stub",
		TargetLanguage: "en",
		EmbedMode:      model.EmbedHard,
	})
	require.NoError(t, err)
	require.Empty(t, report.Failures)
	assert.Equal(t, 1, report.Processed)

	assert.FileExists(t, f.ws.TranslatedSubtitlePath("file0001", "en"))
}

func TestProcessDirectoryCollectsPerFileFailures(t *testing.T) {
	f := newFixture(t)
	// Quota allows 5 videos in the fixture; exceed it with 6 files.
	dir := writeVideoDir(t, "a.mp4", "b.mp4", "c.mp4", "d.mp4", "e.mp4", "f.mp4")

	batch := NewBatchProcessor(f.coord, nil)
	report, err := batch.ProcessDirectory(context.Background(), dir, BatchOptions{
		Identity: "alice",
		Provider: "stub",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Processed)
	require.Len(t, report.Failures, 1)
	assert.ErrorContains(t, report.Failures[0].Err, "admit")
}

func TestProcessDirectoryEmbedRequiresLanguage(t *testing.T) {
	f := newFixture(t)
	batch := NewBatchProcessor(f.coord, nil)

	_, err := batch.ProcessDirectory(context.Background(), t.TempDir(), BatchOptions{
		Provider:  "stub",
		EmbedMode: model.EmbedSoft,
	})
	assert.ErrorContains(t, err, "target language")
}

func TestProcessDirectoryEmptyDir(t *testing.T) {
	f := newFixture(t)
	batch := NewBatchProcessor(f.coord, nil)

	report, err := batch.ProcessDirectory(context.Background(), t.TempDir(), BatchOptions{Provider: "stub"})
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
}
