package capture

import (
	"context"

	"meetscribe/internal/app/model"
)

// SegmentSpec describes the segment a recording session wants opened.
type SegmentSpec struct {
	SessionID     string
	SequenceIndex int
	StartOffsetMs int64
	Bitrate       string
}

// Artifact is the merged output of a finished session.
type Artifact struct {
	Path       string
	DurationMs int64
}

// Handle identifies one in-flight segment capture.
type Handle interface {
	Spec() SegmentSpec
}

// Engine is the capture backend the session controller drives. Suspend and
// Resume may return errors.ErrSuspendUnsupported, in which case the caller
// falls back to closing the current segment and opening a fresh one.
type Engine interface {
	// Open starts capturing a new segment.
	Open(ctx context.Context, spec SegmentSpec) (Handle, error)

	// Close stops the capture and finalizes the segment artifact. The
	// returned segment carries the measured duration. Returns
	// errors.ErrCaptureCrashed when the capture process died before the
	// stop was requested.
	Close(ctx context.Context, h Handle) (model.AudioSegment, error)

	// Suspend pauses an open capture in place, keeping the handle live.
	Suspend(ctx context.Context, h Handle) error

	// Resume continues a suspended capture.
	Resume(ctx context.Context, h Handle) error

	// Merge concatenates closed segments, in sequence order, into one
	// artifact whose duration is the sum of the segment durations.
	Merge(ctx context.Context, segments []model.AudioSegment) (Artifact, error)
}
