// Package pipeline sequences the processing stages for one upload: admit,
// extract audio, transcribe, translate, embed. Callers drive the stage order;
// the coordinator only checks that each stage's inputs exist on disk.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"video-subtitler/internal/app/api/provider"
	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/metrics"
	"video-subtitler/internal/app/model"
	"video-subtitler/internal/app/quota"
	"video-subtitler/internal/app/render"
	"video-subtitler/internal/app/subtitle"
	"video-subtitler/internal/app/util/files"
)

// Coordinator wires the codec, providers, ledger and renderer together.
type Coordinator struct {
	ws        *files.Workspace
	ledger    *quota.Ledger
	providers *provider.Registry
	renderer  *render.Renderer
	logger    *slog.Logger
	newID     func() string
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// withIDGenerator is used by tests for deterministic fileIds.
func withIDGenerator(gen func() string) Option {
	return func(c *Coordinator) { c.newID = gen }
}

func NewCoordinator(ws *files.Workspace, ledger *quota.Ledger, providers *provider.Registry, renderer *render.Renderer, opts ...Option) *Coordinator {
	c := &Coordinator{
		ws:        ws,
		ledger:    ledger,
		providers: providers,
		renderer:  renderer,
		logger:    slog.Default(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AdmitUpload stages the video, probes it, and asks the ledger for
// admission. A rejected upload is removed from disk before returning.
func (c *Coordinator) AdmitUpload(ctx context.Context, identity, filename string, src io.Reader, sizeBytes int64) (model.UploadRecord, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return model.UploadRecord{}, apperrors.Validation("filename %q has no extension", filename)
	}

	fileID := c.newID()
	videoPath := c.ws.VideoPath(fileID, ext)
	if err := stageFile(videoPath, src); err != nil {
		return model.UploadRecord{}, apperrors.Internal("stage upload", err)
	}

	rec := model.UploadRecord{
		FileID:     fileID,
		Identity:   identity,
		SizeMB:     float64(sizeBytes) / (1024 * 1024),
		UploadedAt: time.Now().UTC(),
	}
	if info, err := c.renderer.Probe(ctx, videoPath); err != nil {
		c.logger.Warn("probe failed, duration check skipped", "fileId", fileID, "error", err)
	} else {
		rec.DurationSeconds = info.DurationSeconds
	}

	if err := c.ledger.Admit(rec, ext); err != nil {
		if rmErr := os.Remove(videoPath); rmErr != nil {
			c.logger.Warn("failed to remove rejected upload", "path", videoPath, "error", rmErr)
		}
		return model.UploadRecord{}, err
	}
	return rec, nil
}

func stageFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

// ExtractAudio demuxes the staged video to `{fileId}.mp3` and reports the
// probed media info.
func (c *Coordinator) ExtractAudio(ctx context.Context, fileID string) (string, model.VideoInfo, error) {
	videoPath, err := c.findVideo(fileID)
	if err != nil {
		return "", model.VideoInfo{}, err
	}

	mp3Path := c.ws.AudioPath(fileID)
	if err := c.renderer.ExtractAudio(ctx, videoPath, mp3Path); err != nil {
		return "", model.VideoInfo{}, err
	}

	info, err := c.renderer.Probe(ctx, videoPath)
	if err != nil {
		c.logger.Warn("probe failed after extraction", "fileId", fileID, "error", err)
		info = model.VideoInfo{}
	}
	return mp3Path, info, nil
}

// Transcribe runs ASR over the extracted audio and writes the result to
// `{fileId}_original.srt`.
func (c *Coordinator) Transcribe(ctx context.Context, fileID, providerName string) (model.TranscriptionResult, error) {
	prov, err := c.providers.Get(providerName)
	if err != nil {
		return model.TranscriptionResult{}, err
	}

	mp3Path := c.ws.AudioPath(fileID)
	if !files.Exists(mp3Path) {
		return model.TranscriptionResult{}, apperrors.NotFound("audio artifact", fileID)
	}

	transcript, language, err := prov.Transcribe(ctx, mp3Path)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(providerName, "transcribe", "error").Inc()
		return model.TranscriptionResult{}, err
	}
	metrics.ProviderCalls.WithLabelValues(providerName, "transcribe", "ok").Inc()

	srtPath := c.ws.OriginalSubtitlePath(fileID)
	if err := os.WriteFile(srtPath, subtitle.Serialize(transcript), 0o644); err != nil {
		return model.TranscriptionResult{}, apperrors.Internal("write subtitle file", err)
	}
	c.logger.Info("transcription complete",
		"fileId", fileID, "provider", providerName, "segments", len(transcript), "language", language)
	return model.TranscriptionResult{Transcript: transcript, Language: language}, nil
}

// OriginalTranscript reads back `{fileId}_original.srt`.
func (c *Coordinator) OriginalTranscript(fileID string) (model.Transcript, error) {
	return c.readTranscript(c.ws.OriginalSubtitlePath(fileID), fileID)
}

// TranslatedTranscript reads back `{fileId}_{language}.srt`.
func (c *Coordinator) TranslatedTranscript(fileID, language string) (model.Transcript, error) {
	return c.readTranscript(c.ws.TranslatedSubtitlePath(fileID, language), fileID)
}

func (c *Coordinator) readTranscript(path, fileID string) (model.Transcript, error) {
	if !files.Exists(path) {
		return nil, apperrors.NotFound("subtitle artifact", fileID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Internal("read subtitle file", err)
	}
	return subtitle.Parse(data), nil
}

// UpdateTranscript replaces the original transcript wholesale with an edited
// one. Downstream artifacts are not invalidated; the caller re-translates
// explicitly when needed.
func (c *Coordinator) UpdateTranscript(fileID string, transcript model.Transcript) error {
	if len(transcript) == 0 {
		return apperrors.Validation("edited transcript has no segments")
	}
	for i, seg := range transcript {
		if seg.Start < 0 || seg.End <= seg.Start {
			return apperrors.Validation("segment %d has invalid timing %.3f..%.3f", i+1, seg.Start, seg.End)
		}
		if strings.TrimSpace(seg.Text) == "" {
			return apperrors.Validation("segment %d has empty text", i+1)
		}
	}

	srtPath := c.ws.OriginalSubtitlePath(fileID)
	if !files.Exists(srtPath) {
		return apperrors.NotFound("subtitle artifact", fileID)
	}
	if err := os.WriteFile(srtPath, subtitle.Serialize(transcript), 0o644); err != nil {
		return apperrors.Internal("write subtitle file", err)
	}
	c.logger.Info("transcript updated", "fileId", fileID, "segments", len(transcript))
	return nil
}

// Translate derives an immutable `{fileId}_{language}.srt` from the original
// transcript. Re-translating a language overwrites only that language's file.
func (c *Coordinator) Translate(ctx context.Context, fileID, targetLanguage, providerName, styleHint string) (model.Transcript, error) {
	prov, err := c.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	original, err := c.OriginalTranscript(fileID)
	if err != nil {
		return nil, err
	}

	translated, err := prov.Translate(ctx, original, targetLanguage, styleHint)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(providerName, "translate", "error").Inc()
		return nil, err
	}
	metrics.ProviderCalls.WithLabelValues(providerName, "translate", "ok").Inc()

	srtPath := c.ws.TranslatedSubtitlePath(fileID, targetLanguage)
	if err := os.WriteFile(srtPath, subtitle.Serialize(translated), 0o644); err != nil {
		return nil, apperrors.Internal("write subtitle file", err)
	}
	c.logger.Info("translation complete",
		"fileId", fileID, "language", targetLanguage, "provider", providerName)
	return translated, nil
}

// EmbedHard burns the `{fileId}_{language}.srt` subtitles into the video.
func (c *Coordinator) EmbedHard(ctx context.Context, fileID, language, presetName string, style model.FontStyle) (string, error) {
	preset, err := render.PresetByName(presetName)
	if err != nil {
		return "", apperrors.Validation("%s", err.Error())
	}

	job, err := c.renderJob(fileID, language, model.EmbedHard)
	if err != nil {
		return "", err
	}
	job.Style = style

	if err := c.renderer.EmbedHard(ctx, job, preset); err != nil {
		return "", err
	}
	return job.OutputPath, nil
}

// EmbedSoft muxes the subtitles as a selectable track.
func (c *Coordinator) EmbedSoft(ctx context.Context, fileID, language string) (string, error) {
	job, err := c.renderJob(fileID, language, model.EmbedSoft)
	if err != nil {
		return "", err
	}
	if err := c.renderer.EmbedSoft(ctx, job); err != nil {
		return "", err
	}
	return job.OutputPath, nil
}

func (c *Coordinator) renderJob(fileID, language string, mode model.EmbedMode) (model.RenderJob, error) {
	videoPath, err := c.findVideo(fileID)
	if err != nil {
		return model.RenderJob{}, err
	}
	subtitlePath := c.ws.TranslatedSubtitlePath(fileID, language)
	if !files.Exists(subtitlePath) {
		return model.RenderJob{}, apperrors.NotFound(fmt.Sprintf("%s subtitle artifact", language), fileID)
	}
	return model.RenderJob{
		VideoPath:    videoPath,
		SubtitlePath: subtitlePath,
		OutputPath:   c.ws.EmbeddedVideoPath(fileID, language, mode),
		Mode:         mode,
		Language:     language,
	}, nil
}

// GetUsage reports an identity's consumption against its effective limits.
func (c *Coordinator) GetUsage(identity string) (model.Usage, error) {
	return c.ledger.Usage(identity)
}

// VideoFile resolves the staged original video for download.
func (c *Coordinator) VideoFile(fileID string) (string, error) {
	return c.findVideo(fileID)
}

// EmbeddedFile resolves a finished embed output for download.
func (c *Coordinator) EmbeddedFile(fileID, language string, mode model.EmbedMode) (string, error) {
	path := c.ws.EmbeddedVideoPath(fileID, language, mode)
	if !files.Exists(path) {
		return "", apperrors.NotFound("embedded video", fileID)
	}
	return path, nil
}

// SubtitleFile resolves a subtitle artifact for download. An empty language
// selects the original transcript.
func (c *Coordinator) SubtitleFile(fileID, language string) (string, error) {
	path := c.ws.OriginalSubtitlePath(fileID)
	if language != "" {
		path = c.ws.TranslatedSubtitlePath(fileID, language)
	}
	if !files.Exists(path) {
		return "", apperrors.NotFound("subtitle artifact", fileID)
	}
	return path, nil
}

func (c *Coordinator) findVideo(fileID string) (string, error) {
	path, ok := c.ws.FindVideo(fileID, videoExtensions)
	if !ok {
		return "", apperrors.NotFound("video", fileID)
	}
	return path, nil
}

// videoExtensions are the container formats the pipeline stages.
var videoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv"}

// Providers lists the configured provider names for discovery endpoints.
func (c *Coordinator) Providers() []string {
	return c.providers.List()
}
