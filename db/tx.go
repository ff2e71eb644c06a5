package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type TxFunc[T any] func(*sqlx.Tx) (T, error)

// Tx runs fn inside a transaction, committing only when fn succeeds. A nil
// db means the catalog is switched off and yields ErrSQLiteDisabled. A
// failed rollback is joined onto fn's error.
func Tx[T any](ctx context.Context, db *sqlx.DB, fn TxFunc[T]) (T, error) {
	var zero T
	if db == nil {
		return zero, ErrSQLiteDisabled
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin tx: %w", err)
	}
	out, err := fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return zero, errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit tx: %w", err)
	}
	return out, nil
}
