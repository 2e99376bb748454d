// Package cliutil carries the pieces shared by the subcommands: application
// bootstrap and the polling progress bar.
package cliutil

import (
	"fmt"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"meetscribe/internal/app"
	"meetscribe/internal/app/transcribe"
	"meetscribe/internal/config"
)

// ConfigPath is set by the root command's --config flag.
var ConfigPath string

// Bootstrap loads configuration and wires the application.
func Bootstrap() (*app.App, func(), error) {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	return app.InitializeApp(cfg)
}

// Fatal prints the error and exits non-zero.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// AttachPollBar hooks a progress bar to the orchestrator's poll attempts.
// The returned func finishes the bar and must be called once polling is over.
func AttachPollBar(o *transcribe.Orchestrator) func() {
	p := mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	var bar *mpb.Bar
	o.OnPollAttempt = func(attempt, maxAttempts int) {
		if bar == nil {
			bar = p.AddBar(int64(maxAttempts),
				mpb.PrependDecorators(
					decor.Name("transcribing ", decor.WC{C: decor.DindentRight}),
					decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Percentage(decor.WCSyncSpace),
				),
			)
		}
		bar.Increment()
	}
	return func() {
		o.OnPollAttempt = nil
		if bar != nil {
			bar.SetTotal(-1, true)
		}
		p.Wait()
	}
}

// FormatDuration renders milliseconds as MM:SS for table output.
func FormatDuration(ms int64) string {
	s := ms / 1000
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
