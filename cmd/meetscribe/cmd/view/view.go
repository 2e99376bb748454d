package view

import (
	"fmt"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
	"meetscribe/internal/app/store"
)

var searchTerm string

func init() {
	Cmd.Flags().StringVarP(&searchTerm, "search", "s", "", "Highlight occurrences of this text in the transcript")
}

// Cmd represents the view command
var Cmd = &cobra.Command{
	Use:   "view <meeting-id>",
	Short: "Print a meeting's transcript with resolved speaker names",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, cleanup, err := cliutil.Bootstrap()
		if err != nil {
			cliutil.Fatal(err)
		}
		defer cleanup()

		m, err := a.Get(args[0])
		if err != nil {
			cliutil.Fatal(err)
		}

		fmt.Printf("%s  (%s, %s, %s)\n\n", m.Name,
			m.CreatedAt.Format("2006-01-02 15:04"),
			cliutil.FormatDuration(m.DurationMs), m.Status)
		if m.Error != "" {
			fmt.Printf("Last error: %s\n\n", m.Error)
		}

		matchesPer := map[int]int{}
		total := 0
		if searchTerm != "" {
			for _, match := range a.Search(m, searchTerm) {
				matchesPer[match.UtteranceIndex]++
				total++
			}
		}

		for i, u := range a.ResolvedUtterances(m) {
			marker := ""
			if n := matchesPer[i]; n > 0 {
				marker = fmt.Sprintf("  <-- %d match(es)", n)
			}
			fmt.Printf("[%s] %s: %s%s\n", store.FormatTimestamp(u.Start), u.SpeakerName, u.Text, marker)
		}
		if searchTerm != "" {
			fmt.Printf("\n%d occurrence(s) of %q\n", total, searchTerm)
		}
	},
}
