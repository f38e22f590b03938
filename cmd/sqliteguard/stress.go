package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"sqliteguard/pkg/logger"
	"sqliteguard/pkg/retry"
	"sqliteguard/pkg/storage"
)

var (
	stressWriters int
	stressOps     int
	stressDBPath  string
)

// stressCmd hammers one database file from concurrent writers so the retry
// layer's contention handling can be observed end to end
var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run concurrent writers against one database to exercise retries",
	Long: `Stress opens a single SQLite database and writes to it from multiple
goroutines at once. Under WAL with a zero busy timeout, writers collide and
the store reports lock contention; the retry layer absorbs it with backoff.

The run reports how many operations were issued, how many extra attempts the
retry layer performed, and how many operations ultimately failed.`,
	RunE: runStress,
}

func init() {
	stressCmd.Flags().IntVarP(&stressWriters, "writers", "w", 8, "number of concurrent writer goroutines")
	stressCmd.Flags().IntVarP(&stressOps, "ops", "n", 50, "operations per writer")
	stressCmd.Flags().StringVar(&stressDBPath, "db", "", "database file (default from config)")
	rootCmd.AddCommand(stressCmd)
}

func runStress(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if stressDBPath != "" {
		cfg.Storage.Path = stressDBPath
	}

	log := logger.GetLogger()

	store, err := storage.OpenWithPolicies(
		cfg.Storage,
		retry.PolicyFromConfig(cfg.Retry.Transaction),
		retry.PolicyFromConfig(cfg.Retry.Connection),
		log,
	)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Exec(ctx, `CREATE TABLE IF NOT EXISTS stress_events (
		id INTEGER PRIMARY KEY,
		writer INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		written_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create stress table: %w", err)
	}

	log.InfoWithFields("starting stress run", map[string]interface{}{
		"writers": stressWriters,
		"ops":     stressOps,
		"path":    cfg.Storage.Path,
	})

	start := time.Now()
	var wg sync.WaitGroup
	errs := make(chan error, stressWriters)

	for w := 0; w < stressWriters; w++ {
		wg.Add(1)
		go func(writer int) {
			defer wg.Done()
			for seq := 0; seq < stressOps; seq++ {
				err := store.Transact(ctx, func(tx *sql.Tx) error {
					_, err := tx.Exec(
						`INSERT INTO stress_events (writer, seq, written_at) VALUES (?, ?, ?)`,
						writer, seq, time.Now().UTC().Format(time.RFC3339Nano),
					)
					return err
				})
				if err != nil {
					errs <- fmt.Errorf("writer %d op %d: %w", writer, seq, err)
					return
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	elapsed := time.Since(start)

	failed := 0
	for err := range errs {
		failed++
		log.WithError(err).Error("writer aborted")
	}

	stats := store.Stats()
	log.InfoWithFields("stress run complete", map[string]interface{}{
		"elapsed":         elapsed,
		"operations":      stats.Operations,
		"retries":         stats.Retries,
		"failures":        stats.Failures,
		"writers_aborted": failed,
	})

	var count int
	if err := store.QueryRow(ctx, `SELECT COUNT(*) FROM stress_events`, []interface{}{&count}); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows with %d writers (%d retries absorbed, %d failures) in %v\n",
		count, stressWriters, stats.Retries, stats.Failures, elapsed)

	if failed > 0 {
		return fmt.Errorf("%d writers aborted", failed)
	}
	return nil
}
