package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
	deletecmd "meetscribe/cmd/meetscribe/cmd/delete"
	"meetscribe/cmd/meetscribe/cmd/export"
	"meetscribe/cmd/meetscribe/cmd/list"
	"meetscribe/cmd/meetscribe/cmd/record"
	"meetscribe/cmd/meetscribe/cmd/refresh"
	"meetscribe/cmd/meetscribe/cmd/reprocess"
	"meetscribe/cmd/meetscribe/cmd/speakers"
	"meetscribe/cmd/meetscribe/cmd/version"
	"meetscribe/cmd/meetscribe/cmd/view"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meetscribe",
	Short: "Record meetings and turn them into speaker-attributed transcripts",
	Long: `Record meetings and turn them into speaker-attributed transcripts.

- Record audio with pause/resume, merged losslessly into a single file
- Transcribe with speaker diarization through AssemblyAI
- Assign real names to diarized speakers and search the transcript
- Each meeting lives in its own folder: meeting.json, transcript.md, audio.mp3`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(record.Cmd)
	rootCmd.AddCommand(list.Cmd)
	rootCmd.AddCommand(view.Cmd)
	rootCmd.AddCommand(speakers.Cmd)
	rootCmd.AddCommand(reprocess.Cmd)
	rootCmd.AddCommand(deletecmd.Cmd)
	rootCmd.AddCommand(refresh.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVar(&cliutil.ConfigPath, "config", "",
		"config file (default is ~/.config/meetscribe/config.yaml)")
}
