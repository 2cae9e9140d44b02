package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestErrorTaxonomyUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &NetworkError{MarketPulseError{Message: "yahoo chart", Cause: cause}}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "yahoo chart")
}

func TestIsRateLimitThroughWrapping(t *testing.T) {
	rl := &RateLimitError{Provider: "coingecko"}
	wrapped := &MarketPulseError{Message: "poll failed", Cause: rl}

	assert.True(t, IsRateLimit(rl))
	assert.True(t, IsRateLimit(wrapped))
	assert.False(t, IsRateLimit(errors.New("plain")))
}

// -----------------------------------------------------------------------------

func TestRetryWithBackoffEventualSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff("fetch", 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffExhausted(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff("fetch", 3, time.Millisecond, func() error {
		attempts++
		return errors.New("always")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoffAbortsOnRateLimit(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff("fetch", 5, time.Millisecond, func() error {
		attempts++
		return &RateLimitError{Provider: "yahoo"}
	})

	require.Error(t, err)
	// No point hammering a provider that just told us to back off.
	assert.Equal(t, 1, attempts)
	assert.True(t, IsRateLimit(err))
}

// -----------------------------------------------------------------------------

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	assert.False(t, cb.IsOpen("AAPL"))
	cb.RecordFailure("AAPL")
	cb.RecordFailure("AAPL")
	assert.False(t, cb.IsOpen("AAPL"))
	cb.RecordFailure("AAPL")
	assert.True(t, cb.IsOpen("AAPL"))

	// Other keys are independent.
	assert.False(t, cb.IsOpen("MSFT"))
}

func TestCircuitBreakerRecoversAfterWindow(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(3, time.Minute)
	cb.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		cb.RecordFailure("AAPL")
	}
	require.True(t, cb.IsOpen("AAPL"))

	now = now.Add(61 * time.Second)
	assert.False(t, cb.IsOpen("AAPL"))
}

func TestCircuitBreakerSuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	cb.RecordFailure("AAPL")
	cb.RecordFailure("AAPL")
	cb.RecordSuccess("AAPL")
	cb.RecordFailure("AAPL")
	assert.False(t, cb.IsOpen("AAPL"))
}
