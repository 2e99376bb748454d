package transcribe

import (
	"context"
	"time"
)

// RetryPolicy defines retry behavior
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// Interval returns the backoff delay after the given 1-based attempt.
func (p RetryPolicy) Interval(attempt int) time.Duration {
	d := p.InitialInterval
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if d >= p.MaxInterval {
			return p.MaxInterval
		}
	}
	if d > p.MaxInterval {
		return p.MaxInterval
	}
	return d
}

// sleep waits for d or until ctx is done, reporting whether the wait
// completed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
