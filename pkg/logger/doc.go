// Package logger provides structured logging built on zerolog.
//
// The Logger interface wraps zerolog so packages depend on a small surface
// rather than a concrete logging library. Output goes to a pretty console
// writer by default, or to a file when configured. A package-level logger is
// available via GetLogger/Initialize; TestLogger captures messages for
// assertions in tests.
//
// Usage:
//
//	logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger()
//	log.DebugWithFields("retrying operation", map[string]interface{}{
//	    "attempt": 2,
//	    "delay":   delay,
//	})
package logger
