package retry

import (
	"math"
	"time"
)

// Delay computes the backoff before the next attempt, given the 0-based
// index of the attempt that just failed:
//
//	delay = min(BaseDelay * BackoffFactor^attempt, MaxDelay)
//
// The result is monotonic non-decreasing in attempt until the cap is
// reached and never exceeds MaxDelay. No jitter is applied: delays are
// deterministic so retry schedules are reproducible. Callers that need
// jitter compose their own randomization around the policy.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt))

	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}
