package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// serializationFailure and deadlockDetected are the SQLSTATE codes PostgreSQL
// raises when a serializable transaction has to be retried.
const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// ErrSerialization marks a transaction that still failed after every retry.
var ErrSerialization = errors.New("serializable transaction could not be committed")

// TxBeginner starts sqlx transactions. *sqlx.DB satisfies it.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// IsSerializationFailure reports whether err is a retryable PostgreSQL conflict.
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSerialization) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == serializationFailure || pqErr.Code == deadlockDetected
	}
	return false
}

// WithSerializableTx runs fn inside a serializable transaction, committing on
// success and rolling back on error. Serialization failures are retried up to
// maxRetries additional times; the final failure wraps ErrSerialization.
func WithSerializableTx(ctx context.Context, db TxBeginner, maxRetries int, fn func(tx *sqlx.Tx) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = runOnce(ctx, db, fn)
		if lastErr == nil {
			return nil
		}
		if !IsSerializationFailure(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("%w: %v", ErrSerialization, lastErr)
}

func runOnce(ctx context.Context, db TxBeginner, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
