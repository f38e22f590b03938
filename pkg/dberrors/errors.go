package dberrors

import (
	"errors"
	"fmt"
	"strings"
)

// Category represents the type-level classification of a store failure,
// standing in for the driver's error classes
type Category string

const (
	// CategoryOperational covers generic operational faults: locks, busy
	// transactions, missing tables, malformed SQL. Too coarse on its own,
	// which is why retry decisions also inspect the message.
	CategoryOperational Category = "operational"
	// CategoryDatabase covers broader database-level faults (corruption,
	// I/O trouble, full disk)
	CategoryDatabase Category = "database"
	// CategoryIntegrity covers constraint violations
	CategoryIntegrity Category = "integrity"
	// CategoryInternal marks faults raised by this library itself
	CategoryInternal Category = "internal"
	// CategoryUnknown is anything unrecognized
	CategoryUnknown Category = "unknown"
)

// Error represents a store failure with category information
type Error struct {
	Category Category
	Message  string
	Code     int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying driver error, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause
func New(category Category, code int, message string) *Error {
	return &Error{Category: category, Code: code, Message: message}
}

// Wrap creates an Error preserving the driver error and its message
func Wrap(category Category, code int, err error) *Error {
	return &Error{Category: category, Code: code, Message: err.Error(), Err: err}
}

// CategoryOf extracts the category of a failure. Errors that are not
// (or do not wrap) an *Error are CategoryUnknown.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryUnknown
}

// Kind is the per-failure classification outcome, derived from the
// failure's category and its message content
type Kind string

const (
	// KindTransientContention marks failures caused by another writer
	// temporarily holding a lock; expected to resolve on their own
	KindTransientContention Kind = "transient_contention"
	// KindSchemaOrSyntaxFault marks structural defects (missing table or
	// column, malformed statement) that retries cannot fix
	KindSchemaOrSyntaxFault Kind = "schema_or_syntax_fault"
	// KindOtherOperational marks operational faults matching neither known
	// pattern; possibly transient
	KindOtherOperational Kind = "other_operational"
	// KindUnclassified marks failures outside the operational taxonomy
	KindUnclassified Kind = "unclassified"
)

// transientPhrases are the store's known contention signals. SQLite embeds
// these in the message regardless of which primary code surfaces them.
var transientPhrases = []string{
	"database is locked",
	"database table is locked",
	"cannot start a transaction within a transaction",
}

// fatalPhrases indicate a programming or schema defect even though the
// surrounding category is nominally retryable
var fatalPhrases = []string{
	"no such table",
	"no such column",
	"syntax error",
}

// KindOf classifies a failure. It is pure and deterministic: the same
// failure always yields the same kind. Message patterns take precedence
// over the category because one operational error class covers both
// "disk full" and "table is locked".
func KindOf(err error) Kind {
	if err == nil {
		return KindUnclassified
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range transientPhrases {
		if strings.Contains(msg, phrase) {
			return KindTransientContention
		}
	}
	for _, phrase := range fatalPhrases {
		if strings.Contains(msg, phrase) {
			return KindSchemaOrSyntaxFault
		}
	}
	switch CategoryOf(err) {
	case CategoryOperational, CategoryDatabase:
		return KindOtherOperational
	default:
		return KindUnclassified
	}
}
