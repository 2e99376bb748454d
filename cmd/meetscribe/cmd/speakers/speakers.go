package speakers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
	"meetscribe/internal/app/speaker"
	"meetscribe/internal/app/store"
)

var setFlags []string
var samplesLabel string
var sampleCount int

func init() {
	Cmd.Flags().StringArrayVar(&setFlags, "set", nil,
		"Assign a name to a diarized label, e.g. --set A=Alice (repeatable; empty name clears)")
	Cmd.Flags().StringVar(&samplesLabel, "show-samples", "",
		"Print sample utterances for the given label instead of editing")
	Cmd.Flags().IntVar(&sampleCount, "samples", 3, "How many sample utterances to show")
}

// Cmd represents the speakers command
var Cmd = &cobra.Command{
	Use:   "speakers <meeting-id>",
	Short: "Show or assign names for a meeting's diarized speakers",
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

		if samplesLabel != "" {
			for _, u := range speaker.Samples(m.Utterances, samplesLabel, sampleCount) {
				fmt.Printf("[%s] %s\n", store.FormatTimestamp(u.Start), u.Text)
			}
			return
		}

		if len(setFlags) > 0 {
			edits, err := parseEdits(setFlags)
			if err != nil {
				cliutil.Fatal(err)
			}
			m, err = a.SetSpeakers(m.ID, edits)
			if err != nil {
				cliutil.Fatal(err)
			}
			fmt.Println("Speaker map updated.")
		}

		for _, label := range speaker.ObservedLabels(m.Utterances) {
			name := m.SpeakerMap[label]
			if name == "" {
				name = "(unassigned)"
			}
			fmt.Printf("%s\t%s\n", label, name)
		}
	},
}

func parseEdits(flags []string) (map[string]string, error) {
	edits := make(map[string]string, len(flags))
	for _, f := range flags {
		label, name, ok := strings.Cut(f, "=")
		if !ok || label == "" {
			return nil, fmt.Errorf("invalid --set value %q, expected LABEL=Name", f)
		}
		edits[label] = name
	}
	return edits, nil
}
