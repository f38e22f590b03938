package retry_test

import (
	"fmt"
	"time"

	"sqliteguard/pkg/dberrors"
	"sqliteguard/pkg/retry"
)

func ExampleDo() {
	attempts := 0
	err := retry.Do(func() error {
		attempts++
		if attempts < 2 {
			return dberrors.New(dberrors.CategoryOperational, 5, "database is locked")
		}
		return nil
	}, retry.Policy{
		MaxRetries:    3,
		BaseDelay:     time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
		RetryOn:       []dberrors.Category{dberrors.CategoryOperational},
	}, nil)

	fmt.Println(err, attempts)
	// Output: <nil> 2
}

func ExampleDoWithResult() {
	value, err := retry.DoWithResult(func() (string, error) {
		return "ok", nil
	}, retry.ConnectionPolicy(), nil)

	fmt.Println(value, err)
	// Output: ok <nil>
}

func ExampleNewTransactionRetrier() {
	retrier := retry.NewTransactionRetrier(nil)

	err := retrier.Do(func() error {
		// Commit work against the store here; lock contention is
		// retried with the transaction-scope preset.
		return nil
	})

	fmt.Println(err)
	// Output: <nil>
}
