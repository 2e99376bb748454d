package list

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
	"meetscribe/internal/app/model"
	"meetscribe/internal/app/store"
)

var nameFilter string
var statusFilter string

func init() {
	Cmd.Flags().StringVarP(&nameFilter, "name", "n", "", "Only meetings whose name contains this text")
	Cmd.Flags().StringVar(&statusFilter, "status", "", "Only meetings with this status (recorded, transcribing, transcribed, failed)")
}

// Cmd represents the list command
var Cmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded meetings, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		a, cleanup, err := cliutil.Bootstrap()
		if err != nil {
			cliutil.Fatal(err)
		}
		defer cleanup()

		summaries, err := a.List(store.Filter{
			NameContains: nameFilter,
			Status:       model.MeetingStatus(statusFilter),
		})
		if err != nil {
			cliutil.Fatal(err)
		}
		if len(summaries) == 0 {
			fmt.Println("No meetings found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCREATED\tDURATION\tSTATUS")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.Name, s.CreatedAt.Format("2006-01-02 15:04"),
				cliutil.FormatDuration(s.DurationMs), s.Status)
		}
		w.Flush()
	},
}
