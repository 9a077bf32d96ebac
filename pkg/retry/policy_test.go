package retry

import (
	"testing"
	"time"

	"github.com/ram-tools/ram-client/pkg/client"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	if policy.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", policy.MaxAttempts)
	}
	if policy.InitialBackoff != 1*time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", policy.InitialBackoff)
	}
	if policy.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", policy.BackoffMultiplier)
	}
}

func TestDecide(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name      string
		class     client.ErrorClass
		attempt   int
		waitHint  time.Duration
		wantRetry bool
		wantDelay time.Duration
	}{
		{
			name:      "network first attempt retries after base delay",
			class:     client.ErrorClassNetwork,
			attempt:   1,
			wantRetry: true,
			wantDelay: 1 * time.Second,
		},
		{
			name:      "network second attempt doubles the delay",
			class:     client.ErrorClassNetwork,
			attempt:   2,
			wantRetry: true,
			wantDelay: 2 * time.Second,
		},
		{
			name:      "network third attempt exceeds the cap",
			class:     client.ErrorClassNetwork,
			attempt:   3,
			wantRetry: false,
		},
		{
			name:      "server errors follow the same schedule",
			class:     client.ErrorClassServer,
			attempt:   1,
			wantRetry: true,
			wantDelay: 1 * time.Second,
		},
		{
			name:      "rate limit honors the wait hint",
			class:     client.ErrorClassRateLimit,
			attempt:   1,
			waitHint:  5 * time.Second,
			wantRetry: true,
			wantDelay: 5 * time.Second,
		},
		{
			name:      "rate limit without hint falls back to backoff",
			class:     client.ErrorClassRateLimit,
			attempt:   2,
			wantRetry: true,
			wantDelay: 2 * time.Second,
		},
		{
			name:      "rate limit counts against the attempt cap",
			class:     client.ErrorClassRateLimit,
			attempt:   3,
			waitHint:  5 * time.Second,
			wantRetry: false,
		},
		{
			name:      "client error aborts immediately",
			class:     client.ErrorClassClient,
			attempt:   1,
			wantRetry: false,
		},
		{
			name:      "malformed page aborts immediately",
			class:     client.ErrorClassMalformed,
			attempt:   1,
			wantRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.Decide(tt.class, tt.attempt, tt.waitHint)

			if decision.Retry != tt.wantRetry {
				t.Errorf("Retry = %v, want %v", decision.Retry, tt.wantRetry)
			}
			if tt.wantRetry && decision.Delay != tt.wantDelay {
				t.Errorf("Delay = %v, want %v", decision.Delay, tt.wantDelay)
			}
		})
	}
}

func TestDecideRespectsMaxBackoff(t *testing.T) {
	policy := Policy{
		MaxAttempts:       10,
		InitialBackoff:    1 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        4 * time.Second,
	}

	decision := policy.Decide(client.ErrorClassServer, 6, 0)
	if !decision.Retry {
		t.Fatal("expected a retry")
	}
	if decision.Delay != 4*time.Second {
		t.Errorf("Delay = %v, want cap of 4s", decision.Delay)
	}
}

func TestDecideIsPure(t *testing.T) {
	policy := DefaultPolicy()

	first := policy.Decide(client.ErrorClassNetwork, 2, 0)
	second := policy.Decide(client.ErrorClassNetwork, 2, 0)

	if first != second {
		t.Errorf("Decide is not deterministic: %v vs %v", first, second)
	}
}
