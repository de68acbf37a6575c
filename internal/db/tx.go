// Package db holds the ledger store transaction primitives. Every
// multi-row mutation in the booking, lifecycle and settlement services
// runs inside exactly one WithTx call; row locks are taken with
// SELECT ... FOR UPDATE by the repositories and held until commit or
// rollback.
package db

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx begins a transaction, runs fn, and commits. If fn returns an
// error or panics the transaction is rolled back first, so no committed
// state is ever left half-updated.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
