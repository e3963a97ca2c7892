// Package render drives ffmpeg: audio extraction, subtitle embedding with a
// preset degradation ladder, and container probing. At most a small fixed
// number of encodes run at once.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	apperrors "video-subtitler/internal/app/errors"
	"video-subtitler/internal/app/metrics"
	"video-subtitler/internal/app/model"
)

// DefaultConcurrency bounds simultaneous ffmpeg invocations.
const DefaultConcurrency = 2

// Renderer wraps the ffmpeg and ffprobe binaries.
type Renderer struct {
	run     CommandRunner
	logger  *slog.Logger
	sem     *semaphore.Weighted
	ffmpeg  string
	ffprobe string
}

type RendererOption func(*Renderer)

// WithCommandRunner injects a custom command runner (for testing).
func WithCommandRunner(run CommandRunner) RendererOption {
	return func(r *Renderer) { r.run = run }
}

// WithConcurrency overrides the encode pool size.
func WithConcurrency(n int64) RendererOption {
	return func(r *Renderer) { r.sem = semaphore.NewWeighted(n) }
}

func WithRendererLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) { r.logger = logger }
}

// WithBinaries overrides the ffmpeg and ffprobe binary paths.
func WithBinaries(ffmpeg, ffprobe string) RendererOption {
	return func(r *Renderer) {
		r.ffmpeg = ffmpeg
		r.ffprobe = ffprobe
	}
}

func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		run:     execRunner,
		logger:  slog.Default(),
		sem:     semaphore.NewWeighted(DefaultConcurrency),
		ffmpeg:  "ffmpeg",
		ffprobe: "ffprobe",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractAudio writes the audio track of videoPath to mp3Path as mp3.
func (r *Renderer) ExtractAudio(ctx context.Context, videoPath, mp3Path string) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.sem.Release(1)

	args := []string{"-i", videoPath, "-vn", "-acodec", "libmp3lame", "-y", mp3Path}
	_, stderr, err := r.run(ctx, r.ffmpeg, args...)
	if err != nil {
		return apperrors.EncodeFailure("extract", err, string(stderr))
	}
	r.logger.Info("audio extracted", "video", videoPath, "mp3", mp3Path)
	return nil
}

// EmbedHard burns the subtitles into the video frames, re-encoding with the
// given preset. On timeout or encoder failure it retries at the next faster
// rung of the ladder, one rung per failure, until the fastest rung fails.
func (r *Renderer) EmbedHard(ctx context.Context, job model.RenderJob, preset Preset) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.sem.Release(1)

	return r.runWithFallback(ctx, preset, func(ctx context.Context, p Preset) error {
		return r.encodeOnce(ctx, job, p)
	})
}

// runWithFallback runs attempt at the given preset and, when the attempt
// times out or the encoder fails, retries once at the next faster preset,
// cascading down the ladder until the fastest preset fails. Any other error
// aborts immediately.
func (r *Renderer) runWithFallback(ctx context.Context, preset Preset, attempt func(context.Context, Preset) error) error {
	for {
		err := attempt(ctx, preset)
		if err == nil {
			return nil
		}
		kind := apperrors.KindOf(err)
		if kind != apperrors.KindEncodeTimeout && kind != apperrors.KindEncodeFailure {
			return err
		}
		// The caller giving up is not a preset problem; downgrading would
		// only burn attempts against a dead context.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		faster, ok := nextFaster(preset)
		if !ok {
			return err
		}
		r.logger.Warn("encode failed, downgrading preset",
			"from", preset.Name, "to", faster.Name, "error", err)
		preset = faster
	}
}

func (r *Renderer) encodeOnce(ctx context.Context, job model.RenderJob, p Preset) error {
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	filter := fmt.Sprintf("subtitles='%s':force_style='%s'", job.SubtitlePath, forceStyle(job.Style))
	args := []string{
		"-i", job.VideoPath,
		"-vf", filter,
		"-c:a", "copy",
		"-c:v", "libx264",
		"-preset", p.Speed,
		"-crf", fmt.Sprintf("%d", p.CRF),
		"-threads", "0",
		"-y", job.OutputPath,
	}

	start := time.Now()
	_, stderr, err := r.run(attemptCtx, r.ffmpeg, args...)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			metrics.EncodeAttempts.WithLabelValues(p.Name, "timeout").Inc()
			return apperrors.EncodeTimeout(p.Name, string(stderr))
		}
		metrics.EncodeAttempts.WithLabelValues(p.Name, "error").Inc()
		return apperrors.EncodeFailure(p.Name, err, string(stderr))
	}
	metrics.EncodeAttempts.WithLabelValues(p.Name, "ok").Inc()
	metrics.EncodeDuration.WithLabelValues(p.Name).Observe(time.Since(start).Seconds())
	r.logger.Info("hard embed finished",
		"preset", p.Name, "output", job.OutputPath, "elapsed", time.Since(start))
	return nil
}

// EmbedSoft muxes the subtitles as a separate mov_text stream without
// re-encoding audio or video.
func (r *Renderer) EmbedSoft(ctx context.Context, job model.RenderJob) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.sem.Release(1)

	args := []string{
		"-i", job.VideoPath,
		"-i", job.SubtitlePath,
		"-c:v", "copy",
		"-c:a", "copy",
		"-c:s", "mov_text",
		"-metadata:s:s:0", "language=" + iso639_2(job.Language),
		"-y", job.OutputPath,
	}
	_, stderr, err := r.run(ctx, r.ffmpeg, args...)
	if err != nil {
		return apperrors.EncodeFailure("mux", err, string(stderr))
	}
	r.logger.Info("soft embed finished", "output", job.OutputPath, "language", job.Language)
	return nil
}

// languageTags maps common two-letter codes to the ISO 639-2 tags mp4
// containers expect. Unknown codes pass through unchanged.
var languageTags = map[string]string{
	"en": "eng", "th": "tha", "zh": "chi", "ja": "jpn",
	"ko": "kor", "fr": "fre", "de": "ger", "es": "spa",
	"vi": "vie", "id": "ind",
}

func iso639_2(code string) string {
	if tag, ok := languageTags[strings.ToLower(code)]; ok {
		return tag
	}
	return code
}
