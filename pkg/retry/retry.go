package retry

import (
	"time"
	"unicode/utf8"

	"sqliteguard/pkg/dberrors"
	"sqliteguard/pkg/logger"
)

// Operation is a function that performs one storage operation that might
// need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need
// retrying
type OperationWithResult[T any] func() (T, error)

// ErrLoopExhausted is returned if the retry loop ever exits without a
// terminal result. It is unreachable in correct use; observing it means
// the loop itself has a defect.
var ErrLoopExhausted = dberrors.New(dberrors.CategoryInternal, 0,
	"retry loop exited without success or failure")

// maxLoggedErrorLen bounds the failure message carried in retry diagnostics
const maxLoggedErrorLen = 120

// Do executes an operation under the given policy.
//
// The operation runs at most p.MaxRetries+1 times. On success the result is
// returned immediately. On failure the error is classified: a non-retryable
// failure, or a retryable one with the budget exhausted, propagates
// verbatim; the last caught error reaches the caller with its original
// category and message intact so callers can branch on it. A retryable
// failure with budget remaining is logged at debug level and the calling
// goroutine blocks for the scheduled backoff before the next attempt.
//
// Each retry re-invokes the operation from scratch, so the operation must
// be idempotent or otherwise safe to re-run; that contract is the caller's
// to satisfy. There is no cancellation primitive: an operation needing a
// deadline must observe it itself and fail promptly.
func Do(op Operation, p Policy, log logger.Logger) error {
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		if !ShouldRetry(err, p.RetryOn) || attempt == p.MaxRetries {
			return err
		}

		delay := p.Delay(attempt)

		// Diagnostics are fire-and-forget; a nil logger is fine and a
		// logging failure must never abort the loop.
		if log != nil {
			log.DebugWithFields("retrying storage operation", map[string]interface{}{
				"attempt":      attempt + 1,
				"max_attempts": p.MaxRetries + 1,
				"delay":        delay,
				"error":        truncateError(err),
			})
		}

		time.Sleep(delay)
	}

	// Unreachable when MaxRetries >= 0: every loop iteration returns.
	return ErrLoopExhausted
}

// DoWithResult executes an operation that returns a result under the given
// policy
func DoWithResult[T any](op OperationWithResult[T], p Policy, log logger.Logger) (T, error) {
	var result T

	err := Do(func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, p, log)

	return result, err
}

// truncateError renders an error message bounded for log lines. The cut
// lands on a rune boundary: driver messages can quote identifiers with
// multi-byte characters.
func truncateError(err error) string {
	msg := err.Error()
	if len(msg) <= maxLoggedErrorLen {
		return msg
	}

	cut := maxLoggedErrorLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + "..."
}

// Retrier binds a policy and logger into a reusable wrapper. A Retrier is
// immutable and safe for concurrent use.
type Retrier struct {
	policy Policy
	log    logger.Logger
}

// NewRetrier creates a retrier with the given policy
func NewRetrier(p Policy, log logger.Logger) *Retrier {
	return &Retrier{policy: p, log: log}
}

// NewTransactionRetrier creates a retrier pre-configured with the
// transaction-scope preset
func NewTransactionRetrier(log logger.Logger) *Retrier {
	return NewRetrier(TransactionPolicy(), log)
}

// NewConnectionRetrier creates a retrier pre-configured with the
// connection-scope preset
func NewConnectionRetrier(log logger.Logger) *Retrier {
	return NewRetrier(ConnectionPolicy(), log)
}

// Do executes an operation under the retrier's policy
func (r *Retrier) Do(op Operation) error {
	return Do(op, r.policy, r.log)
}

// Policy returns the retrier's policy
func (r *Retrier) Policy() Policy {
	return r.policy
}
