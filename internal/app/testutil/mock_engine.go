package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"meetscribe/internal/app/capture"
	"meetscribe/internal/app/model"
)

// MockEngine is a configurable capture.Engine for session tests. It writes
// real files under Dir so discard and merge paths can be exercised against
// the filesystem.
type MockEngine struct {
	mu sync.Mutex

	// Dir receives segment and merge artifacts. Required.
	Dir string

	// SegmentDurations holds the duration reported for each closed segment,
	// indexed by sequence. Segments past the end report DefaultDurationMs.
	SegmentDurations  []int64
	DefaultDurationMs int64

	// SuspendErr is returned by Suspend; leave nil to support native pause.
	SuspendErr error
	// OpenErr, CloseErr, MergeErr force failures of the respective calls.
	OpenErr  error
	CloseErr error
	MergeErr error

	OpenCount    int
	SuspendCount int
	ResumeCount  int
	MergeCalls   [][]model.AudioSegment
}

type mockHandle struct {
	spec capture.SegmentSpec
	path string
}

func (h *mockHandle) Spec() capture.SegmentSpec { return h.spec }

func NewMockEngine(dir string) *MockEngine {
	return &MockEngine{Dir: dir, DefaultDurationMs: 1000}
}

func (e *MockEngine) Open(_ context.Context, spec capture.SegmentSpec) (capture.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.OpenErr != nil {
		return nil, e.OpenErr
	}
	e.OpenCount++
	path := filepath.Join(e.Dir, uuid.New().String()+".mp3")
	if err := os.WriteFile(path, []byte("segment"), 0o644); err != nil {
		return nil, err
	}
	return &mockHandle{spec: spec, path: path}, nil
}

func (e *MockEngine) Close(_ context.Context, h capture.Handle) (model.AudioSegment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.CloseErr != nil {
		return model.AudioSegment{}, e.CloseErr
	}
	mh := h.(*mockHandle)
	dur := e.DefaultDurationMs
	if mh.spec.SequenceIndex < len(e.SegmentDurations) {
		dur = e.SegmentDurations[mh.spec.SequenceIndex]
	}
	return model.AudioSegment{
		SequenceIndex: mh.spec.SequenceIndex,
		Path:          mh.path,
		StartOffsetMs: mh.spec.StartOffsetMs,
		DurationMs:    dur,
	}, nil
}

func (e *MockEngine) Suspend(_ context.Context, _ capture.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.SuspendCount++
	return e.SuspendErr
}

func (e *MockEngine) Resume(_ context.Context, _ capture.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ResumeCount++
	return nil
}

func (e *MockEngine) Merge(_ context.Context, segments []model.AudioSegment) (capture.Artifact, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.MergeCalls = append(e.MergeCalls, append([]model.AudioSegment(nil), segments...))
	if e.MergeErr != nil {
		return capture.Artifact{}, e.MergeErr
	}
	path := filepath.Join(e.Dir, "merged-"+uuid.New().String()+".mp3")
	if err := os.WriteFile(path, []byte("merged"), 0o644); err != nil {
		return capture.Artifact{}, err
	}
	for _, s := range segments {
		os.Remove(s.Path)
	}
	return capture.Artifact{Path: path, DurationMs: model.TotalDurationMs(segments)}, nil
}
