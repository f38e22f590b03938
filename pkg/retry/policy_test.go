package retry

import (
	"testing"
	"time"

	"sqliteguard/pkg/config"
	"sqliteguard/pkg/dberrors"
)

func TestPolicyFromConfig(t *testing.T) {
	pc := config.PolicyConfig{
		MaxRetries:    7,
		BaseDelay:     30 * time.Millisecond,
		MaxDelay:      900 * time.Millisecond,
		BackoffFactor: 1.8,
		RetryOn:       []string{"operational", "database"},
	}

	p := PolicyFromConfig(pc)

	if p.MaxRetries != 7 || p.BaseDelay != 30*time.Millisecond ||
		p.MaxDelay != 900*time.Millisecond || p.BackoffFactor != 1.8 {
		t.Errorf("unexpected policy from config: %+v", p)
	}
	if len(p.RetryOn) != 2 ||
		p.RetryOn[0] != dberrors.CategoryOperational ||
		p.RetryOn[1] != dberrors.CategoryDatabase {
		t.Errorf("unexpected retryable categories: %v", p.RetryOn)
	}
}

func TestPolicyFromConfigDefaultsMatchPresets(t *testing.T) {
	cfg := config.DefaultConfig()

	txn := PolicyFromConfig(cfg.Retry.Transaction)
	if want := TransactionPolicy(); txn.MaxRetries != want.MaxRetries ||
		txn.BaseDelay != want.BaseDelay || txn.MaxDelay != want.MaxDelay ||
		txn.BackoffFactor != want.BackoffFactor {
		t.Errorf("default transaction config diverged from preset: %+v vs %+v", txn, want)
	}

	conn := PolicyFromConfig(cfg.Retry.Connection)
	if want := ConnectionPolicy(); conn.MaxRetries != want.MaxRetries ||
		conn.BaseDelay != want.BaseDelay || conn.MaxDelay != want.MaxDelay ||
		conn.BackoffFactor != want.BackoffFactor {
		t.Errorf("default connection config diverged from preset: %+v vs %+v", conn, want)
	}
}
