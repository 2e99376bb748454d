package testutil

import (
	"time"

	"meetscribe/internal/app/model"
)

// TestUtterances provides a small diarized transcript for tests.
var TestUtterances = []model.Utterance{
	{Speaker: "A", Text: "Good morning everyone, let's get started with the roadmap review.", Start: 0, End: 4200, Confidence: 0.97},
	{Speaker: "B", Text: "Thanks. The search feature shipped last Tuesday.", Start: 4200, End: 8100, Confidence: 0.94},
	{Speaker: "A", Text: "Great. Any blockers on the export work?", Start: 8100, End: 11000, Confidence: 0.95},
	{Speaker: "C", Text: "The export job needs another week of testing.", Start: 11000, End: 15400, Confidence: 0.91},
	{Speaker: "B", Text: "I can help with the export testing.", Start: 15400, End: 18200, Confidence: 0.96},
}

// NewTestMeeting builds a transcribed meeting populated with TestUtterances.
func NewTestMeeting(name string) *model.Meeting {
	return &model.Meeting{
		Name:       name,
		CreatedAt:  time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC),
		DurationMs: 18200,
		Status:     model.StatusTranscribed,
		Utterances: append([]model.Utterance(nil), TestUtterances...),
		SpeakerMap: map[string]string{"A": "Alice", "B": "Bob"},
		AudioRef:   "audio.mp3",
	}
}
