package repository

import (
	"context"
	"database/sql"
)

// withTx runs fn inside a transaction.  The transaction is committed when fn
// returns nil and rolled back otherwise, so fn's writes land together or not
// at all.
func withTx(ctx context.Context, db *sql.DB, op string, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = classify(op, cerr)
		}
	}()
	return fn(tx)
}
