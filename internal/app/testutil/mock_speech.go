package testutil

import (
	"context"
	"sync"

	"meetscribe/internal/app/transcribe"
)

// PollStep scripts one Status call of the mock speech service.
type PollStep struct {
	Result transcribe.Result
	Err    error
}

// MockSpeechService is a scripted transcribe.SpeechService. Each Status call
// consumes the next PollStep; once the script runs out the last step repeats.
type MockSpeechService struct {
	mu sync.Mutex

	UploadErr error
	SubmitErr error
	RemoteID  string
	Steps     []PollStep

	UploadCalls int
	SubmitCalls int
	StatusCalls int
	CancelCalls int
	LastRequest transcribe.Request
}

func NewMockSpeechService(steps ...PollStep) *MockSpeechService {
	return &MockSpeechService{RemoteID: "remote-1", Steps: steps}
}

func (m *MockSpeechService) Upload(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UploadCalls++
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	return "https://upload.example/audio", nil
}

func (m *MockSpeechService) Submit(_ context.Context, _ string, req transcribe.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitCalls++
	m.LastRequest = req
	if m.SubmitErr != nil {
		return "", m.SubmitErr
	}
	return m.RemoteID, nil
}

func (m *MockSpeechService) Status(_ context.Context, _ string) (transcribe.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Steps) == 0 {
		return transcribe.Result{Status: transcribe.StatusPending}, nil
	}
	idx := m.StatusCalls
	if idx >= len(m.Steps) {
		idx = len(m.Steps) - 1
	}
	m.StatusCalls++
	step := m.Steps[idx]
	return step.Result, step.Err
}

func (m *MockSpeechService) Cancel(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls++
	return nil
}
