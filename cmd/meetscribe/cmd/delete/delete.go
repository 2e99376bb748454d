package delete

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
)

var yes bool

func init() {
	Cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
}

// Cmd represents the delete command
var Cmd = &cobra.Command{
	Use:   "delete <meeting-id>",
	Short: "Delete a meeting and all of its files",
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

		if !yes {
			fmt.Printf("Delete %q (%s) and all of its files? [y/N] ", m.Name, m.ID)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(answer)) != "y" {
				fmt.Println("Aborted.")
				return
			}
		}

		if err := a.Delete(m.ID); err != nil {
			cliutil.Fatal(err)
		}
		fmt.Println("Deleted.")
	},
}
