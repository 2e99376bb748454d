package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrNotFound, "meeting %s", "abc")
	assert.True(t, Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "abc")
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestServiceErrorRetryable(t *testing.T) {
	transient := &ServiceError{Code: "http_503", Message: "unavailable", Retryable: true}
	terminal := &ServiceError{Code: "http_401", Message: "bad key"}

	assert.True(t, IsRetryable(transient))
	assert.False(t, IsRetryable(terminal))
	assert.False(t, IsRetryable(New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestIsRetryableThroughWrapping(t *testing.T) {
	inner := &ServiceError{Code: "http_500", Message: "boom", Retryable: true}
	wrapped := Wrap(fmt.Errorf("outer: %w", inner), "uploading audio")
	assert.True(t, IsRetryable(wrapped))
}

func TestServiceErrorMessage(t *testing.T) {
	err := &ServiceError{Code: "http_429", Message: "slow down"}
	assert.Equal(t, "speech service error [http_429]: slow down", err.Error())
}
