package process

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"video-subtitler/internal/app"
	"video-subtitler/internal/app/model"
	"video-subtitler/internal/app/pipeline"
)

var (
	videoDir       string
	providerName   string
	identity       string
	targetLanguage string
	embedMode      string
	preset         string
	parallel       int
	noProgress     bool
)

func init() {
	Cmd.Flags().StringVarP(&videoDir, "videoDir", "v", "",
		"directory containing the video files to process")
	Cmd.Flags().StringVarP(&providerName, "provider", "p", "",
		"transcription backend to use (openai or botnoi)")
	Cmd.Flags().StringVarP(&identity, "identity", "i", "batch",
		"identity the uploads are charged against")
	Cmd.Flags().StringVarP(&targetLanguage, "language", "l", "",
		"translate the transcript into this language")
	Cmd.Flags().StringVarP(&embedMode, "embed", "e", "",
		"embed the translated subtitles: hard (burn in) or soft (mux)")
	Cmd.Flags().StringVar(&preset, "preset", "balanced",
		"encoding preset for hard embedding: quality, balanced or fast")
	Cmd.Flags().IntVarP(&parallel, "parallel", "P", 1,
		"how many videos to process concurrently")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false,
		"disable the progress bar")

	Cmd.MarkFlagRequired("videoDir")
	Cmd.MarkFlagRequired("provider")
}

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Batch-process a directory of videos through the subtitle pipeline",
	Long: `Batch-process a directory of videos through the subtitle pipeline.

Every video in the directory is admitted against the quota, its audio
extracted and transcribed. With --language the transcript is also
translated, and with --embed the translation is rendered back into the
video.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var mode model.EmbedMode
		switch embedMode {
		case "":
		case "hard":
			mode = model.EmbedHard
		case "soft":
			mode = model.EmbedSoft
		default:
			return fmt.Errorf("invalid --embed %q: want hard or soft", embedMode)
		}

		application, cleanup, err := app.InitializeApplication()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		opts := pipeline.BatchOptions{
			Identity:       identity,
			Provider:       providerName,
			TargetLanguage: targetLanguage,
			EmbedMode:      mode,
			Preset:         preset,
			Parallel:       parallel,
		}
		if !noProgress {
			opts.ProgressWriter = os.Stderr
		}

		batch := pipeline.NewBatchProcessor(application.Coordinator, application.Logger)
		report, err := batch.ProcessDirectory(cmd.Context(), videoDir, opts)
		if err != nil {
			return err
		}

		fmt.Printf("processed %d video(s)\n", report.Processed)
		for _, failure := range report.Failures {
			fmt.Fprintf(os.Stderr, "failed %s: %v\n", failure.Source, failure.Err)
		}
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d video(s) failed", len(report.Failures))
		}
		return nil
	},
}
