package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"video-subtitler/cmd/vsub/cmd/process"
	"video-subtitler/cmd/vsub/cmd/serve"
	"video-subtitler/cmd/vsub/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vsub",
	Short: "Transcribe, translate and embed subtitles into videos",
	Long: `Transcribe videos with OpenAI Whisper or Botnoi, translate the
transcript, and burn or mux the subtitles back into the video.

- serve runs the HTTP API
- process batch-runs a local directory through the pipeline`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(process.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
