package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TxFn is the unit of work WithTx runs inside a transaction. Repos
// built over the tx (NewCharacterRepo(tx), NewUnlockRepo(tx)) see and
// write uncommitted state.
type TxFn func(tx *sql.Tx) error

// WithTx begins a transaction, runs fn, and commits. An error from fn
// rolls the transaction back and is returned unchanged.
func WithTx(ctx context.Context, db *sql.DB, fn TxFn) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
