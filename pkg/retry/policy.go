// Package retry implements the pure retry decision for classified page-fetch
// failures. The policy holds no state and performs no sleeping; the
// pagination driver owns the clock.
package retry

import (
	"time"

	"github.com/ram-tools/ram-client/pkg/client"
)

// Decision is the outcome of consulting the policy after a failed attempt.
type Decision struct {
	// Retry is true when the same cursor should be fetched again after Delay.
	// False means abort the fetch.
	Retry bool

	// Delay is how long to wait before the next attempt.
	Delay time.Duration
}

// Policy holds the retry schedule configuration.
type Policy struct {
	// MaxAttempts is the total number of attempts per page, including the
	// first. Exceeding it aborts the fetch.
	MaxAttempts int

	// InitialBackoff is the delay after the first failed attempt.
	InitialBackoff time.Duration

	// BackoffMultiplier scales the delay per additional attempt.
	BackoffMultiplier float64

	// MaxBackoff caps the computed delay.
	MaxBackoff time.Duration
}

// DefaultPolicy returns the default schedule: 3 total attempts with delays of
// 1s, 2s between them.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// Decide returns the retry decision for a failure of the given class after
// attempt attempts have been made at the same cursor (attempt >= 1).
//
// Transient classes (network, server) follow the exponential schedule. Rate
// limits prefer the server-provided wait hint when present and otherwise fall
// back to the same schedule; they count against the same attempt cap. Client
// and malformed failures abort immediately.
func (p Policy) Decide(class client.ErrorClass, attempt int, waitHint time.Duration) Decision {
	if !class.Retryable() {
		return Decision{}
	}
	if attempt >= p.MaxAttempts {
		return Decision{}
	}

	if class == client.ErrorClassRateLimit && waitHint > 0 {
		return Decision{Retry: true, Delay: waitHint}
	}

	return Decision{Retry: true, Delay: p.backoff(attempt)}
}

// backoff computes the exponential delay after the given attempt number.
func (p Policy) backoff(attempt int) time.Duration {
	delay := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.BackoffMultiplier)
		if delay >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if delay > p.MaxBackoff {
		return p.MaxBackoff
	}
	return delay
}
