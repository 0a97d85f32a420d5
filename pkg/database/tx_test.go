package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestWithSerializableTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM teacher_draft_items").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := WithSerializableTx(context.Background(), db, 0, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("DELETE FROM teacher_draft_items")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := WithSerializableTx(context.Background(), db, 2, func(tx *sqlx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTxRetriesSerializationFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	attempts := 0
	err := WithSerializableTx(context.Background(), db, 1, func(tx *sqlx.Tx) error {
		attempts++
		if attempts == 1 {
			return &pq.Error{Code: serializationFailure}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSerializableTxGivesUp(t *testing.T) {
	db, mock := newMockDB(t)
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	err := WithSerializableTx(context.Background(), db, 1, func(tx *sqlx.Tx) error {
		return &pq.Error{Code: deadlockDetected}
	})
	require.Error(t, err)
	assert.True(t, IsSerializationFailure(err))
	assert.ErrorIs(t, err, ErrSerialization)
	assert.NoError(t, mock.ExpectationsWereMet())
}
