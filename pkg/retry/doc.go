// Package retry provides policy-driven retries for operations against the
// embedded store, hardening callers against transient lock contention while
// failing fast on non-recoverable faults.
//
// Features:
//   - Capped exponential backoff with deterministic (jitter-free) delays
//   - Error classification combining failure category and message content
//   - Verbatim propagation: the store's original error reaches the caller
//   - Tuned presets for transaction-scope and connection-scope operations
//   - Debug-level diagnostics per retried attempt
//
// Basic usage:
//
//	// One-off with the default policy
//	err := retry.Do(func() error {
//	    return store.Insert(record)
//	}, retry.DefaultPolicy(), logger.GetLogger())
//
//	// Reusable preset wrapper
//	retrier := retry.NewTransactionRetrier(logger.GetLogger())
//	err := retrier.Do(func() error {
//	    return store.CommitBatch(batch)
//	})
//
//	// Operation with a result
//	count, err := retry.DoWithResult(func() (int, error) {
//	    return store.CountRows("events")
//	}, retry.ConnectionPolicy(), nil)
//
// Classification:
//
// A failure is retried only when its category is in the policy's RetryOn
// set. Within a retryable category, known contention signals (lock held,
// table locked, nested transaction) are retried, known structural defects
// (missing table or column, malformed statement) are not, and unrecognized
// operational faults are retried on the assumption they may be transient.
// The wrapped operation is invoked at most MaxRetries+1 times and must be
// safe to re-invoke.
package retry
