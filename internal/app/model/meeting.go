package model

import "time"

// MeetingStatus is the lifecycle stage of a meeting record. Transitions only
// move forward, except reprocessing which resets Transcribed/Failed back to
// Transcribing.
type MeetingStatus string

const (
	StatusRecording    MeetingStatus = "recording"
	StatusRecorded     MeetingStatus = "recorded"
	StatusTranscribing MeetingStatus = "transcribing"
	StatusTranscribed  MeetingStatus = "transcribed"
	StatusFailed       MeetingStatus = "failed"
)

var statusRank = map[MeetingStatus]int{
	StatusRecording:    0,
	StatusRecorded:     1,
	StatusTranscribing: 2,
	StatusTranscribed:  3,
	StatusFailed:       3,
}

// Valid reports whether s is a known status value.
func (s MeetingStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether a normal commit may move from s to next.
func (s MeetingStatus) CanAdvanceTo(next MeetingStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return statusRank[next] >= statusRank[s]
}

// Reprocessable reports whether a meeting in this status may be reset to
// Transcribing by an explicit reprocess action.
func (s MeetingStatus) Reprocessable() bool {
	return s == StatusTranscribed || s == StatusFailed
}

// Terminal reports whether the transcription pipeline has finished for this
// status.
func (s MeetingStatus) Terminal() bool {
	return s == StatusTranscribed || s == StatusFailed
}

// Meeting is the durable record of one recorded conversation.
type Meeting struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	CreatedAt    time.Time         `json:"created_at"`
	DurationMs   int64             `json:"duration_ms"`
	Status       MeetingStatus     `json:"status"`
	Utterances   []Utterance       `json:"utterances,omitempty"`
	SpeakerMap   map[string]string `json:"speaker_map,omitempty"`
	AudioRef     string            `json:"audio_ref,omitempty"`
	TranscriptID string            `json:"transcript_id,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Summary is the listing view of a meeting.
type Summary struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	DurationMs int64
	Status     MeetingStatus
	Folder     string
}
