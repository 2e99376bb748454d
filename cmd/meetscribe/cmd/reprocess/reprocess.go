package reprocess

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
)

// Cmd represents the reprocess command
var Cmd = &cobra.Command{
	Use:   "reprocess <meeting-id>",
	Short: "Run transcription again over a meeting's retained audio",
	Long: `Run transcription again over a meeting's retained audio.

Works on transcribed and failed meetings. A failed run keeps the previous
transcript; only a successful run replaces it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, cleanup, err := cliutil.Bootstrap()
		if err != nil {
			cliutil.Fatal(err)
		}
		defer cleanup()

		done := cliutil.AttachPollBar(a.Orchestrator())
		m, err := a.Reprocess(context.Background(), args[0])
		done()
		if err != nil {
			cliutil.Fatal(err)
		}
		fmt.Printf("Reprocessed: %d utterances.\n", len(m.Utterances))
	},
}
