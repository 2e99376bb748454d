package model

// AudioSegment is one contiguous captured span of audio between a
// start/resume and the next pause/stop. Segments are immutable once closed,
// never overlap, and are ordered by SequenceIndex starting at 0.
type AudioSegment struct {
	SequenceIndex int    `json:"sequence_index"`
	Path          string `json:"path"`
	StartOffsetMs int64  `json:"start_offset_ms"`
	DurationMs    int64  `json:"duration_ms"`
}

// TotalDurationMs sums the durations of the given segments.
func TotalDurationMs(segments []AudioSegment) int64 {
	var total int64
	for _, seg := range segments {
		total += seg.DurationMs
	}
	return total
}
