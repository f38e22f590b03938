package retry

import (
	"sqliteguard/pkg/dberrors"
)

// ShouldRetry decides whether a caught failure warrants another attempt
// under the given retryable category set. It is pure: no I/O, no mutation,
// deterministic for the same failure.
//
// The decision runs in two stages. The category gate rejects anything
// outside the retryable set immediately (a logic error must never be
// retried, and no backoff is incurred). Within a retryable category the
// failure's kind decides: known contention signals are retried, known
// structural defects are not, and anything unrecognized is retried on the
// assumption that an unfamiliar operational fault may be transient. That
// fallback is deliberate; tightening it would change observable retry
// counts for callers.
func ShouldRetry(err error, categories []dberrors.Category) bool {
	if err == nil {
		return false
	}

	category := dberrors.CategoryOf(err)
	if !containsCategory(categories, category) {
		return false
	}

	switch dberrors.KindOf(err) {
	case dberrors.KindTransientContention:
		return true
	case dberrors.KindSchemaOrSyntaxFault:
		return false
	default:
		return true
	}
}

func containsCategory(categories []dberrors.Category, c dberrors.Category) bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}
