package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"

	"video-subtitler/internal/app/model"
)

// BatchOptions controls a directory run. Provider is required; the rest are
// optional stages layered on top of transcription.
type BatchOptions struct {
	Identity string
	Provider string

	// TargetLanguage enables the translation stage.
	TargetLanguage string

	// EmbedMode enables the embed stage; requires TargetLanguage.
	EmbedMode model.EmbedMode
	Preset    string
	Style     model.FontStyle

	Parallel int

	// ProgressWriter enables an mpb bar when non-nil.
	ProgressWriter io.Writer
}

// BatchFailure records one file that did not make it through the run.
type BatchFailure struct {
	Source string
	Err    error
}

// BatchReport summarizes a directory run.
type BatchReport struct {
	Processed int
	Failures  []BatchFailure
}

// BatchProcessor drives a whole directory of videos through the pipeline:
// admit, extract, transcribe, then optionally translate and embed.
type BatchProcessor struct {
	coord  *Coordinator
	logger *slog.Logger

	mu sync.Mutex
}

func NewBatchProcessor(coord *Coordinator, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{coord: coord, logger: logger}
}

// ProcessDirectory runs every video file in dir through the configured
// stages. Files are processed in name order with at most opts.Parallel
// in flight; one file failing does not stop the rest.
func (b *BatchProcessor) ProcessDirectory(ctx context.Context, dir string, opts BatchOptions) (BatchReport, error) {
	if opts.Provider == "" {
		return BatchReport{}, fmt.Errorf("batch: provider is required")
	}
	if opts.EmbedMode != "" && opts.TargetLanguage == "" {
		return BatchReport{}, fmt.Errorf("batch: embed requires a target language")
	}
	if opts.Identity == "" {
		opts.Identity = "batch"
	}
	if opts.EmbedMode == model.EmbedHard && opts.Preset == "" {
		opts.Preset = "balanced"
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}

	sources, err := listVideos(dir)
	if err != nil {
		return BatchReport{}, err
	}
	if len(sources) == 0 {
		b.logger.Info("no video files found", "dir", dir)
		return BatchReport{}, nil
	}

	var container *mpb.Progress
	var bar *mpb.Bar
	if opts.ProgressWriter != nil {
		container = mpb.New(
			mpb.WithOutput(opts.ProgressWriter),
			mpb.WithRefreshRate(120*time.Millisecond),
		)
		bar = container.AddBar(int64(len(sources)),
			mpb.PrependDecorators(
				decor.Name("Processing videos ", decor.WC{C: decor.DindentRight}),
				decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.NewPercentage("%.1f", decor.WCSyncSpace),
				decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " done"),
			),
		)
	}

	var report BatchReport
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)

	for _, source := range sources {
		source := source
		g.Go(func() error {
			err := b.processOne(ctx, source, opts)
			if bar != nil {
				bar.Increment()
			}

			b.mu.Lock()
			defer b.mu.Unlock()
			if err != nil {
				b.logger.Error("batch file failed", "source", source, "error", err)
				report.Failures = append(report.Failures, BatchFailure{Source: source, Err: err})
			} else {
				report.Processed++
			}
			// Per-file errors are collected, not propagated, so the rest
			// of the group keeps running.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if container != nil {
		container.Wait()
	}
	return report, nil
}

func (b *BatchProcessor) processOne(ctx context.Context, source string, opts BatchOptions) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}

	rec, err := b.coord.AdmitUpload(ctx, opts.Identity, filepath.Base(source), f, info.Size())
	if err != nil {
		return fmt.Errorf("admit: %w", err)
	}

	if _, _, err := b.coord.ExtractAudio(ctx, rec.FileID); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}

	if _, err := b.coord.Transcribe(ctx, rec.FileID, opts.Provider); err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	if opts.TargetLanguage == "" {
		return nil
	}
	if _, err := b.coord.Translate(ctx, rec.FileID, opts.TargetLanguage, opts.Provider, ""); err != nil {
		return fmt.Errorf("translate to %s: %w", opts.TargetLanguage, err)
	}

	switch opts.EmbedMode {
	case model.EmbedHard:
		if _, err := b.coord.EmbedHard(ctx, rec.FileID, opts.TargetLanguage, opts.Preset, opts.Style); err != nil {
			return fmt.Errorf("embed hard: %w", err)
		}
	case model.EmbedSoft:
		if _, err := b.coord.EmbedSoft(ctx, rec.FileID, opts.TargetLanguage); err != nil {
			return fmt.Errorf("embed soft: %w", err)
		}
	}
	return nil
}

func listVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, allowed := range videoExtensions {
			if ext == allowed {
				sources = append(sources, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(sources)
	return sources, nil
}
