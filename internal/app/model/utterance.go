package model

// Utterance is one labeled, timestamped span of transcribed speech as
// returned by the diarizing speech service. Immutable once produced;
// SpeakerName is the only field rewritten, by speaker map resolution.
type Utterance struct {
	Speaker     string  `json:"speaker"`
	SpeakerName string  `json:"speaker_name"`
	Text        string  `json:"text"`
	Start       int64   `json:"start"`
	End         int64   `json:"end"`
	Confidence  float64 `json:"confidence,omitempty"`
}
