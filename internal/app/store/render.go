package store

import (
	"fmt"
	"strings"

	"meetscribe/internal/app/model"
	"meetscribe/internal/app/speaker"
)

// RenderTranscript produces the human-readable transcript.md companion for a
// meeting record. Speaker names are resolved through the meeting's speaker
// map so the rendered file always reflects the latest naming.
func RenderTranscript(m *model.Meeting) []byte {
	var b strings.Builder

	name := m.Name
	if name == "" {
		name = "Untitled meeting"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "**Date:** %s\n\n", m.CreatedAt.Format("2006-01-02 15:04"))
	if m.DurationMs > 0 {
		fmt.Fprintf(&b, "**Duration:** %s\n\n", FormatTimestamp(m.DurationMs))
	}
	if m.Status == model.StatusFailed && m.Error != "" {
		fmt.Fprintf(&b, "**Error:** %s\n\n", m.Error)
	}

	if len(m.Utterances) == 0 {
		b.WriteString("_No transcript available._\n")
		return []byte(b.String())
	}

	b.WriteString("## Transcript\n\n")
	for _, u := range speaker.Resolve(m.Utterances, m.SpeakerMap) {
		fmt.Fprintf(&b, "**[%s] %s:** %s\n\n", FormatTimestamp(u.Start), u.SpeakerName, u.Text)
	}
	return []byte(b.String())
}

// FormatTimestamp renders milliseconds as MM:SS, rolling past an hour into
// the minutes field.
func FormatTimestamp(ms int64) string {
	totalSeconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
