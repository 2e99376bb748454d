package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceTo(t *testing.T) {
	tests := []struct {
		name string
		from MeetingStatus
		to   MeetingStatus
		want bool
	}{
		{"recording_to_recorded", StatusRecording, StatusRecorded, true},
		{"recorded_to_transcribing", StatusRecorded, StatusTranscribing, true},
		{"transcribing_to_transcribed", StatusTranscribing, StatusTranscribed, true},
		{"transcribing_to_failed", StatusTranscribing, StatusFailed, true},
		{"same_status", StatusTranscribed, StatusTranscribed, true},
		{"transcribed_to_failed_equal_rank", StatusTranscribed, StatusFailed, true},
		{"failed_to_transcribed_equal_rank", StatusFailed, StatusTranscribed, true},
		{"transcribed_to_recorded", StatusTranscribed, StatusRecorded, false},
		{"failed_to_transcribing", StatusFailed, StatusTranscribing, false},
		{"transcribing_to_recorded", StatusTranscribing, StatusRecorded, false},
		{"unknown_target", StatusRecorded, MeetingStatus("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestReprocessable(t *testing.T) {
	assert.True(t, StatusTranscribed.Reprocessable())
	assert.True(t, StatusFailed.Reprocessable())
	assert.False(t, StatusRecorded.Reprocessable())
	assert.False(t, StatusTranscribing.Reprocessable())
	assert.False(t, StatusRecording.Reprocessable())
}

func TestTotalDurationMs(t *testing.T) {
	segments := []AudioSegment{
		{SequenceIndex: 0, DurationMs: 1000},
		{SequenceIndex: 1, DurationMs: 2500},
	}
	assert.Equal(t, int64(3500), TotalDurationMs(segments))
	assert.Equal(t, int64(0), TotalDurationMs(nil))
}
