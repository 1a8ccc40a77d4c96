package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/sims-core/pkg/errors"
)

// RunInTx runs fn inside a transaction on db. The transaction is rolled back
// when fn fails or panics; fn's error is returned as-is.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Storage(err, "begin tx")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Storage(err, "commit tx")
	}
	committed = true
	return nil
}

// runMaybeTx runs fn in a transaction when atomic is set, otherwise directly
// against db with a nil tx.
func runMaybeTx(ctx context.Context, db *sqlx.DB, atomic bool, fn func(tx *sqlx.Tx) error) error {
	if !atomic {
		return fn(nil)
	}
	if db == nil {
		return fmt.Errorf("run in tx: store has no database handle")
	}
	return RunInTx(ctx, db, fn)
}
