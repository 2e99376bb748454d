package record

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"meetscribe/cmd/meetscribe/cmd/cliutil"
	"meetscribe/internal/app/capture"
	"meetscribe/internal/app/session"
)

var meetingName string
var noTranscribe bool

func init() {
	Cmd.Flags().StringVarP(&meetingName, "name", "n", "",
		"Name of the meeting, used for the folder and transcript title")
	Cmd.Flags().BoolVar(&noTranscribe, "no-transcribe", false,
		"Save the recording without submitting it for transcription")

	Cmd.MarkFlagRequired("name")
}

// Cmd represents the record command
var Cmd = &cobra.Command{
	Use:   "record",
	Short: "Record a meeting from the system microphone",
	Long: `Record a meeting from the system microphone.

While recording, type a command and press enter:
  p   pause
  r   resume
  s   stop, save, and transcribe
  d   discard the recording without saving`,
	Run: func(cmd *cobra.Command, args []string) {
		a, cleanup, err := cliutil.Bootstrap()
		if err != nil {
			cliutil.Fatal(err)
		}
		defer cleanup()

		ctx := context.Background()
		sess := a.NewSession()
		if err := sess.Start(ctx); err != nil {
			cliutil.Fatal(err)
		}
		fmt.Printf("Recording %q... [p]ause [r]esume [s]top [d]iscard\n", meetingName)

		artifact, saved, err := controlLoop(ctx, sess)
		if err != nil {
			cliutil.Fatal(err)
		}
		if !saved {
			fmt.Println("Recording discarded.")
			return
		}

		m, err := a.SaveRecording(meetingName, artifact, sess.CreatedAt())
		if err != nil {
			cliutil.Fatal(err)
		}
		fmt.Printf("Saved meeting %s (%s)\n", m.ID, cliutil.FormatDuration(m.DurationMs))

		if noTranscribe {
			return
		}
		done := cliutil.AttachPollBar(a.Orchestrator())
		m, err = a.Transcribe(ctx, m.ID)
		done()
		if err != nil {
			cliutil.Fatal(err)
		}
		fmt.Printf("Transcribed: %d utterances. View with: meetscribe view %s\n",
			len(m.Utterances), m.ID)
	},
}

// controlLoop reads commands from stdin until the session is stopped or
// discarded. The boolean reports whether the artifact should be saved.
func controlLoop(ctx context.Context, sess *session.Controller) (capture.Artifact, bool, error) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "p":
			if err := sess.Pause(ctx); err != nil {
				fmt.Printf("pause failed: %v\n", err)
				continue
			}
			fmt.Printf("Paused at %s\n", cliutil.FormatDuration(sess.Elapsed().Milliseconds()))
		case "r":
			if err := sess.Resume(ctx); err != nil {
				fmt.Printf("resume failed: %v\n", err)
				continue
			}
			fmt.Println("Recording resumed")
		case "s":
			artifact, err := sess.Stop(ctx)
			if err != nil {
				return capture.Artifact{}, false, err
			}
			return artifact, true, nil
		case "d", "q":
			if err := sess.Discard(ctx); err != nil {
				return capture.Artifact{}, false, err
			}
			return capture.Artifact{}, false, nil
		case "":
		default:
			fmt.Println("Commands: p=pause r=resume s=stop d=discard q=abort")
		}
	}
	// stdin closed without a stop; keep the audio rather than lose it.
	artifact, err := sess.Stop(ctx)
	return artifact, err == nil, err
}
