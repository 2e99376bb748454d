package transcribe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/logger"
	"meetscribe/internal/app/testutil"
	"meetscribe/internal/app/transcribe"
)

func fastPolicy(maxAttempts int) transcribe.RetryPolicy {
	return transcribe.RetryPolicy{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func transientErr() error {
	return &errors.ServiceError{Code: "http_503", Message: "unavailable", Retryable: true}
}

func pendingStep() testutil.PollStep {
	return testutil.PollStep{Result: transcribe.Result{Status: transcribe.StatusPending}}
}

func completedStep() testutil.PollStep {
	return testutil.PollStep{Result: transcribe.Result{
		Status:     transcribe.StatusCompleted,
		Utterances: testutil.TestUtterances,
	}}
}

func TestPollingSucceedsWithinAttemptBudget(t *testing.T) {
	svc := testutil.NewMockSpeechService(
		testutil.PollStep{Err: transientErr()},
		testutil.PollStep{Err: transientErr()},
		testutil.PollStep{Err: transientErr()},
		completedStep(),
	)
	o := transcribe.NewOrchestrator(svc, fastPolicy(3), fastPolicy(4), logger.NewNop())

	h, err := o.Submit(context.Background(), transcribe.Request{AudioPath: "audio.mp3"})
	require.NoError(t, err)

	res := h.Wait(context.Background())
	assert.Equal(t, transcribe.StatusCompleted, res.Status)
	assert.Len(t, res.Utterances, len(testutil.TestUtterances))
	assert.Equal(t, 4, svc.StatusCalls)
}

func TestPollingFailsWhenAttemptBudgetExhausted(t *testing.T) {
	svc := testutil.NewMockSpeechService(
		testutil.PollStep{Err: transientErr()},
		testutil.PollStep{Err: transientErr()},
		testutil.PollStep{Err: transientErr()},
		completedStep(),
	)
	o := transcribe.NewOrchestrator(svc, fastPolicy(3), fastPolicy(3), logger.NewNop())

	h, err := o.Submit(context.Background(), transcribe.Request{AudioPath: "audio.mp3"})
	require.NoError(t, err)

	res := h.Wait(context.Background())
	assert.Equal(t, transcribe.StatusFailed, res.Status)
	assert.Equal(t, transcribe.ReasonTimeout, res.Reason)
	assert.Equal(t, 3, svc.StatusCalls)
}

func TestTerminalErrorStopsPollingImmediately(t *testing.T) {
	svc := testutil.NewMockSpeechService(
		testutil.PollStep{Err: &errors.ServiceError{Code: "http_401", Message: "bad key"}},
	)
	o := transcribe.NewOrchestrator(svc, fastPolicy(3), fastPolicy(10), logger.NewNop())

	h, err := o.Submit(context.Background(), transcribe.Request{AudioPath: "audio.mp3"})
	require.NoError(t, err)

	res := h.Wait(context.Background())
	assert.Equal(t, transcribe.StatusFailed, res.Status)
	assert.Contains(t, res.Reason, "bad key")
	assert.Equal(t, 1, svc.StatusCalls)
}

func TestServiceReportedFailureIsTerminal(t *testing.T) {
	svc := testutil.NewMockSpeechService(
		pendingStep(),
		testutil.PollStep{Result: transcribe.Result{
			Status: transcribe.StatusFailed,
			Reason: "audio file is corrupted",
		}},
	)
	o := transcribe.NewOrchestrator(svc, fastPolicy(3), fastPolicy(10), logger.NewNop())

	h, err := o.Submit(context.Background(), transcribe.Request{AudioPath: "audio.mp3"})
	require.NoError(t, err)

	res := h.Wait(context.Background())
	assert.Equal(t, transcribe.StatusFailed, res.Status)
	assert.Equal(t, "audio file is corrupted", res.Reason)
	assert.Equal(t, 2, svc.StatusCalls)
}

func TestCancelAbortsPollingAndNotifiesService(t *testing.T) {
	svc := testutil.NewMockSpeechService(pendingStep())
	o := transcribe.NewOrchestrator(svc, fastPolicy(3), fastPolicy(1000), logger.NewNop())

	h, err := o.Submit(context.Background(), transcribe.Request{AudioPath: "audio.mp3"})
	require.NoError(t, err)

	o.Cancel(h)
	res := h.Wait(context.Background())
	assert.Equal(t, transcribe.StatusFailed, res.Status)
	assert.Equal(t, transcribe.ReasonCancelled, res.Reason)

	assert.Eventually(t, func() bool {
		svcCancelled := svc.CancelCalls > 0
		return svcCancelled
	}, time.Second, 5*time.Millisecond)
}

func TestSubmitRetriesTransientUploadFailures(t *testing.T) {
	svc := testutil.NewMockSpeechService(completedStep())
	svc.UploadErr = transientErr()
	o := transcribe.NewOrchestrator(svc, fastPolicy(3), fastPolicy(5), logger.NewNop())

	_, err := o.Submit(context.Background(), transcribe.Request{AudioPath: "audio.mp3"})
	require.Error(t, err)
	assert.Equal(t, 3, svc.UploadCalls)
}

func TestSubmitDoesNotRetryTerminalFailures(t *testing.T) {
	svc := testutil.NewMockSpeechService(completedStep())
	svc.SubmitErr = &errors.ServiceError{Code: "http_400", Message: "bad request"}
	o := transcribe.NewOrchestrator(svc, fastPolicy(3), fastPolicy(5), logger.NewNop())

	_, err := o.Submit(context.Background(), transcribe.Request{AudioPath: "audio.mp3"})
	require.Error(t, err)
	assert.Equal(t, 1, svc.SubmitCalls)
}

func TestHandleReportsPendingWhileRunning(t *testing.T) {
	svc := testutil.NewMockSpeechService(pendingStep())
	o := transcribe.NewOrchestrator(svc, fastPolicy(3), fastPolicy(1000), logger.NewNop())

	h, err := o.Submit(context.Background(), transcribe.Request{AudioPath: "audio.mp3"})
	require.NoError(t, err)

	assert.Equal(t, transcribe.StatusPending, o.Poll(h).Status)
	o.Cancel(h)
	h.Wait(context.Background())
}

func TestIndependentHandlesPerSubmission(t *testing.T) {
	svc1 := testutil.NewMockSpeechService(completedStep())
	svc2 := testutil.NewMockSpeechService(pendingStep())
	o1 := transcribe.NewOrchestrator(svc1, fastPolicy(3), fastPolicy(5), logger.NewNop())
	o2 := transcribe.NewOrchestrator(svc2, fastPolicy(3), fastPolicy(1000), logger.NewNop())

	h1, err := o1.Submit(context.Background(), transcribe.Request{AudioPath: "a.mp3"})
	require.NoError(t, err)
	h2, err := o2.Submit(context.Background(), transcribe.Request{AudioPath: "b.mp3"})
	require.NoError(t, err)
	assert.NotEqual(t, h1.ID, h2.ID)

	res := h1.Wait(context.Background())
	assert.Equal(t, transcribe.StatusCompleted, res.Status)
	assert.Equal(t, transcribe.StatusPending, o2.Poll(h2).Status)
	o2.Cancel(h2)
	h2.Wait(context.Background())
}

func TestRetryPolicyIntervalBackoff(t *testing.T) {
	p := transcribe.RetryPolicy{
		MaxAttempts:     10,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
	}

	assert.Equal(t, 100*time.Millisecond, p.Interval(1))
	assert.Equal(t, 200*time.Millisecond, p.Interval(2))
	assert.Equal(t, 400*time.Millisecond, p.Interval(3))
	assert.Equal(t, 800*time.Millisecond, p.Interval(4))
	assert.Equal(t, time.Second, p.Interval(5))
	assert.Equal(t, time.Second, p.Interval(9))
}
