// Package dberrors defines the failure taxonomy for the embedded store.
//
// Failures carry two levels of classification:
//   - Category: the type-level class the storage layer assigns when wrapping
//     driver errors (operational, database, integrity, internal, unknown).
//   - Kind: the per-failure outcome derived from category plus message
//     content (transient contention, schema/syntax fault, other operational,
//     unclassified).
//
// Kind derivation inspects the error message for known SQLite phrases.
// String matching is fragile across store versions, so it is confined to
// this package: callers branch on Category and Kind, never on raw text.
package dberrors
