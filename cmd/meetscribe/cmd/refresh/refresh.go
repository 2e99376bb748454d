package refresh

import (
	"fmt"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
)

// Cmd represents the refresh command
var Cmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the catalog from the meeting folders on disk",
	Run: func(cmd *cobra.Command, args []string) {
		a, cleanup, err := cliutil.Bootstrap()
		if err != nil {
			cliutil.Fatal(err)
		}
		defer cleanup()

		n, err := a.Refresh()
		if err != nil {
			cliutil.Fatal(err)
		}
		fmt.Printf("Catalog rebuilt: %d meeting(s).\n", n)
	},
}
