package transcribe

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
)

// Status of a transcription job as seen by callers.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Failure reasons for jobs that never produced a transcript.
const (
	ReasonTimeout   = "polling attempts exhausted"
	ReasonCancelled = "cancelled"
)

// Result is the outcome of one transcription job.
type Result struct {
	Status     Status
	Utterances []model.Utterance
	Reason     string
}

// Request describes one audio artifact to transcribe.
type Request struct {
	AudioPath        string
	SpeakersExpected int
	LanguageCode     string
}

// SpeechService is the opaque contract of the external speech-to-text
// service. Transport failures must be reported as retryable
// *errors.ServiceError values; service-reported failures (bad audio, quota)
// as terminal ones.
type SpeechService interface {
	Upload(ctx context.Context, audioPath string) (audioURL string, err error)
	Submit(ctx context.Context, audioURL string, req Request) (remoteID string, err error)
	Status(ctx context.Context, remoteID string) (Result, error)
	Cancel(ctx context.Context, remoteID string) error
}

// Handle identifies one submitted job. Each Submit call yields a new,
// independent handle.
type Handle struct {
	ID       string
	RemoteID string

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result Result
}

// Done is closed when the job reaches a terminal result.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Result returns the terminal result, or a pending one while polling runs.
func (h *Handle) Result() Result {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.result
	default:
		return Result{Status: StatusPending}
	}
}

// Wait blocks until the job finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) Result {
	select {
	case <-h.done:
		return h.Result()
	case <-ctx.Done():
		return Result{Status: StatusPending}
	}
}

func (h *Handle) finish(r Result) {
	h.mu.Lock()
	h.result = r
	h.mu.Unlock()
	close(h.done)
}

// Orchestrator drives upload, submission, and status polling of the speech
// service to completion, retrying transient failures with exponential
// backoff.
type Orchestrator struct {
	svc    SpeechService
	submit RetryPolicy
	poll   RetryPolicy
	log    *zap.SugaredLogger

	// OnPollAttempt, when set, is called before each poll attempt. Used by
	// the CLI to drive its progress bar.
	OnPollAttempt func(attempt, maxAttempts int)
}

// NewOrchestrator wires the orchestrator with its backoff policies.
func NewOrchestrator(svc SpeechService, submit, poll RetryPolicy, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{svc: svc, submit: submit, poll: poll, log: log}
}

// Submit uploads the artifact, creates a remote job, and starts background
// polling. The returned handle is independent of any previous submission for
// the same meeting.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Handle, error) {
	var audioURL string
	err := o.withRetry(ctx, "upload", func() error {
		var err error
		audioURL, err = o.svc.Upload(ctx, req.AudioPath)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "uploading audio")
	}

	var remoteID string
	err = o.withRetry(ctx, "submit", func() error {
		var err error
		remoteID, err = o.svc.Submit(ctx, audioURL, req)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "submitting transcription job")
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &Handle{
		ID:       uuid.New().String(),
		RemoteID: remoteID,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	o.log.Infow("transcription job submitted", "job", h.ID, "remote", remoteID)

	go o.pollLoop(pollCtx, h)
	return h, nil
}

// Poll returns the current view of the job without blocking.
func (o *Orchestrator) Poll(h *Handle) Result {
	return h.Result()
}

// Cancel aborts polling. The remote job is cancelled best-effort without
// waiting for server-side acknowledgement.
func (o *Orchestrator) Cancel(h *Handle) {
	h.cancel()
	go func() {
		if err := o.svc.Cancel(context.Background(), h.RemoteID); err != nil {
			o.log.Debugw("remote cancel failed", "job", h.ID, "error", err)
		}
	}()
}

func (o *Orchestrator) pollLoop(ctx context.Context, h *Handle) {
	for attempt := 1; attempt <= o.poll.MaxAttempts; attempt++ {
		if o.OnPollAttempt != nil {
			o.OnPollAttempt(attempt, o.poll.MaxAttempts)
		}

		res, err := o.svc.Status(ctx, h.RemoteID)
		switch {
		case err == nil && res.Status != StatusPending:
			o.log.Infow("transcription job finished",
				"job", h.ID, "status", res.Status, "attempts", attempt)
			h.finish(res)
			return
		case err != nil && !errors.IsRetryable(err):
			o.log.Warnw("transcription job failed terminally",
				"job", h.ID, "error", err)
			h.finish(Result{Status: StatusFailed, Reason: err.Error()})
			return
		case err != nil:
			o.log.Debugw("transient polling failure",
				"job", h.ID, "attempt", attempt, "error", err)
		}

		if attempt < o.poll.MaxAttempts {
			if !sleep(ctx, o.poll.Interval(attempt)) {
				h.finish(Result{Status: StatusFailed, Reason: ReasonCancelled})
				return
			}
		}
	}

	o.log.Warnw("transcription job timed out",
		"job", h.ID, "attempts", o.poll.MaxAttempts)
	h.finish(Result{Status: StatusFailed, Reason: ReasonTimeout})
}

func (o *Orchestrator) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= o.submit.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !errors.IsRetryable(err) {
			return err
		}
		o.log.Debugw("retrying "+op, "attempt", attempt, "error", err)
		if attempt < o.submit.MaxAttempts {
			if !sleep(ctx, o.submit.Interval(attempt)) {
				return errors.Wrap(errors.ErrCancelled, op)
			}
		}
	}
	return err
}
