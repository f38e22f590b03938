package retry

import (
	"time"

	"sqliteguard/pkg/config"
	"sqliteguard/pkg/dberrors"
)

// Policy holds the tuning for one retry scope. Policies are plain values:
// once constructed they are never mutated, so a single Policy may be shared
// by any number of concurrent invocations without locking.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt, so an
	// operation is invoked at most MaxRetries+1 times
	MaxRetries int
	// BaseDelay is the delay before the first retry
	BaseDelay time.Duration
	// MaxDelay caps the computed backoff delay
	MaxDelay time.Duration
	// BackoffFactor is the multiplier applied per failed attempt
	BackoffFactor float64
	// RetryOn is the set of failure categories eligible for retry.
	// A failure outside this set propagates on its first occurrence.
	RetryOn []dberrors.Category
}

// DefaultPolicy returns the baseline policy: generic operational faults
// only, moderate budget.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    5,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		RetryOn:       []dberrors.Category{dberrors.CategoryOperational},
	}
}

// TransactionPolicy returns the preset for transaction-scope operations.
// Commit contention is common and usually self-resolving, so the budget is
// high, the delays small, and the growth gentle, and database-level faults
// are retried alongside operational ones.
func TransactionPolicy() Policy {
	return Policy{
		MaxRetries:    8,
		BaseDelay:     50 * time.Millisecond,
		MaxDelay:      1 * time.Second,
		BackoffFactor: 1.5,
		RetryOn: []dberrors.Category{
			dberrors.CategoryOperational,
			dberrors.CategoryDatabase,
		},
	}
}

// ConnectionPolicy returns the preset for connection-scope operations.
// Connection-level faults more often indicate a real outage, so backoff is
// more conservative and only generic operational faults are retried.
func ConnectionPolicy() Policy {
	return Policy{
		MaxRetries:    5,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		RetryOn:       []dberrors.Category{dberrors.CategoryOperational},
	}
}

// PolicyFromConfig materializes a Policy from its configuration section.
// Unknown category names are rejected by config validation before this runs.
func PolicyFromConfig(pc config.PolicyConfig) Policy {
	p := Policy{
		MaxRetries:    pc.MaxRetries,
		BaseDelay:     pc.BaseDelay,
		MaxDelay:      pc.MaxDelay,
		BackoffFactor: pc.BackoffFactor,
	}
	for _, cat := range pc.RetryOn {
		p.RetryOn = append(p.RetryOn, dberrors.Category(cat))
	}
	return p
}
