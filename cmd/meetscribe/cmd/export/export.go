package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
	"meetscribe/internal/app/export"
	"meetscribe/internal/app/model"
	"meetscribe/internal/app/store"
)

var outputFilePath string

func init() {
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "set outputFilePath")

	Cmd.MarkFlagRequired("outputFilePath")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export [meeting-id...]",
	Short: "Export meeting transcripts to excel",
	Long: `Export meeting transcripts to excel.

Without arguments every meeting is exported; pass meeting ids to narrow the
selection. Each transcribed meeting gets its own sheet.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, cleanup, err := cliutil.Bootstrap()
		if err != nil {
			cliutil.Fatal(err)
		}
		defer cleanup()

		ids := args
		if len(ids) == 0 {
			summaries, err := a.List(store.Filter{})
			if err != nil {
				cliutil.Fatal(err)
			}
			for _, s := range summaries {
				ids = append(ids, s.ID)
			}
		}

		meetings := make([]*model.Meeting, 0, len(ids))
		for _, id := range ids {
			m, err := a.Get(id)
			if err != nil {
				cliutil.Fatal(err)
			}
			meetings = append(meetings, m)
		}

		if err := export.ToExcel(meetings, outputFilePath); err != nil {
			cliutil.Fatal(err)
		}
		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
	},
}
