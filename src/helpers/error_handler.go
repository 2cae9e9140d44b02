package helpers

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type MarketPulseError struct {
	Message string
	Cause   error
}

func (e *MarketPulseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MarketPulseError) Unwrap() error {
	return e.Cause
}

// Distinct error types for taxonomy-based handling.
type ConfigurationError struct{ MarketPulseError }
type NetworkError struct{ MarketPulseError }
type DataSourceError struct{ MarketPulseError }
type DatabaseError struct{ MarketPulseError }
type DecodeError struct{ MarketPulseError }

// -----------------------------------------------------------------------------

// RateLimitError signals a provider 429. The poller reacts by widening its
// polling delay instead of retrying immediately.
type RateLimitError struct {
	Provider string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited (429)", e.Provider)
}

// IsRateLimit reports whether err wraps a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff executes fn up to maxRetries times with exponential delay
// between attempts. Rate-limit errors abort early so the caller's own pacing
// takes over.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if IsRateLimit(err) || attempt == maxRetries-1 {
			break
		}

		time.Sleep(baseDelay * (1 << attempt))
	}

	return &MarketPulseError{Message: fmt.Sprintf("%s failed after retries", operation), Cause: lastErr}
}

// -----------------------------------------------------------------------------
// Circuit Breaker
// -----------------------------------------------------------------------------

// CircuitBreaker tracks consecutive failures per key (ticker) and opens the
// circuit for a recovery window once the threshold is hit. A single flaky
// ticker must not stall the rest of the poll cycle.
type CircuitBreaker struct {
	mu          sync.Mutex
	failures    map[string]int
	lastFailure map[string]time.Time
	threshold   int
	recovery    time.Duration
	now         func() time.Time
}

// -----------------------------------------------------------------------------

func NewCircuitBreaker(threshold int, recovery time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failures:    make(map[string]int),
		lastFailure: make(map[string]time.Time),
		threshold:   threshold,
		recovery:    recovery,
		now:         time.Now,
	}
}

// -----------------------------------------------------------------------------

// IsOpen reports whether key is currently tripped. Once the recovery window
// elapses the failure count resets and the circuit half-closes.
func (cb *CircuitBreaker) IsOpen(key string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.failures[key] < cb.threshold {
		return false
	}
	if cb.now().Sub(cb.lastFailure[key]) < cb.recovery {
		return true
	}
	cb.failures[key] = 0
	return false
}

// -----------------------------------------------------------------------------

// RecordFailure increments key's consecutive failure count.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures[key]++
	cb.lastFailure[key] = cb.now()
}

// -----------------------------------------------------------------------------

// RecordSuccess closes the circuit for key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures[key] = 0
}
