// Package storage provides a hardened wrapper around an embedded SQLite
// database.
//
// The storage package handles:
//   - Opening the database with WAL and busy-timeout pragmas
//   - Running statements and transactions through the retry presets
//   - Mapping driver errors into the dberrors taxonomy
//   - Observational retry accounting for diagnostics
//
// The Store type is the primary interface. Every operation it runs is
// wrapped by the retry layer: transient lock contention is absorbed with
// backoff, structural faults (missing table, malformed SQL) surface
// immediately, and the driver's original error always reaches the caller.
//
// Usage:
//
//	store, err := storage.Open(cfg.Storage, logger.GetLogger())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Transact(ctx, func(tx *sql.Tx) error {
//	    _, err := tx.Exec("INSERT INTO events (payload) VALUES (?)", payload)
//	    return err
//	})
package storage
