package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"sqliteguard/pkg/config"
	"sqliteguard/pkg/dberrors"
	"sqliteguard/pkg/logger"
	"sqliteguard/pkg/retry"
)

// Store wraps an embedded SQLite database and runs every operation through
// the retry layer, so callers see either a (possibly delayed) success or
// the store's original failure.
type Store struct {
	db   *sql.DB
	log  logger.Logger
	txn  retry.Policy
	conn retry.Policy

	operations atomic.Uint64
	retries    atomic.Uint64
	failures   atomic.Uint64
}

// Stats is a snapshot of the store's retry accounting
type Stats struct {
	// Operations is the number of logical calls issued
	Operations uint64
	// Retries is the number of extra attempts the retry layer absorbed
	Retries uint64
	// Failures is the number of operations that ultimately failed
	Failures uint64
}

// Open opens the database described by cfg with the preset retry policies
func Open(cfg config.StorageConfig, log logger.Logger) (*Store, error) {
	return OpenWithPolicies(cfg, retry.TransactionPolicy(), retry.ConnectionPolicy(), log)
}

// OpenWithPolicies opens the database with caller-supplied retry policies
func OpenWithPolicies(cfg config.StorageConfig, txn, conn retry.Policy, log logger.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds())
	if cfg.WAL {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", wrapError(err))
	}

	return &Store{db: db, log: log, txn: txn, conn: conn}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for callers that manage their own
// retries
func (s *Store) DB() *sql.DB {
	return s.db
}

// Exec runs a single statement under the connection-scope policy
func (s *Store) Exec(ctx context.Context, query string, args ...interface{}) error {
	return s.run(s.conn, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return wrapError(err)
	})
}

// QueryRow runs a single-row query under the connection-scope policy and
// scans the result into the dest targets. Query placeholders bind to args.
func (s *Store) QueryRow(ctx context.Context, query string, dest []interface{}, args ...interface{}) error {
	return s.run(s.conn, func() error {
		return wrapError(s.db.QueryRowContext(ctx, query, args...).Scan(dest...))
	})
}

// Transact runs fn inside a transaction under the transaction-scope
// policy. Each retry re-begins the transaction and re-invokes fn from
// scratch, so fn must be safe to re-run.
func (s *Store) Transact(ctx context.Context, fn func(*sql.Tx) error) error {
	return s.run(s.txn, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return wrapError(err)
		}

		if err := fn(tx); err != nil {
			tx.Rollback()
			return wrapError(err)
		}

		if err := tx.Commit(); err != nil {
			tx.Rollback()
			return wrapError(err)
		}

		return nil
	})
}

// Stats returns a snapshot of the store's retry accounting
func (s *Store) Stats() Stats {
	return Stats{
		Operations: s.operations.Load(),
		Retries:    s.retries.Load(),
		Failures:   s.failures.Load(),
	}
}

// run executes op under the given policy and records attempt accounting.
// The counters are observational only and play no part in retry decisions.
func (s *Store) run(p retry.Policy, op retry.Operation) error {
	attempts := 0
	err := retry.Do(func() error {
		attempts++
		return op()
	}, p, s.log)

	s.operations.Add(1)
	if attempts > 1 {
		s.retries.Add(uint64(attempts - 1))
	}
	if err != nil {
		s.failures.Add(1)
	}

	return err
}

// wrapError maps a driver failure into the dberrors taxonomy, preserving
// the driver's message and the original error chain. Errors that did not
// come from the driver (sql.ErrNoRows, context errors) pass through
// untouched so callers can match on them directly.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	return dberrors.Wrap(categoryForCode(se.Code()), se.Code(), err)
}

// categoryForCode maps a SQLite result code to a failure category. Only
// the primary code matters; extended codes keep it in the low byte.
func categoryForCode(code int) dberrors.Category {
	switch code & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return dberrors.CategoryIntegrity
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_IOERR,
		sqlite3.SQLITE_FULL, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_PERM,
		sqlite3.SQLITE_READONLY:
		return dberrors.CategoryDatabase
	default:
		// Locks, busy transactions, missing tables, and malformed SQL
		// all surface as operational faults; the message decides which.
		return dberrors.CategoryOperational
	}
}
