package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/salesdesk/crm-backend/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockTxManager(t *testing.T) (repositories.TransactionManager, *DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := &DB{DB: sqlDB, logger: zap.NewNop()}
	return NewTransactionManager(db, zap.NewNop()), db, mock, func() { sqlDB.Close() }
}

func TestTransactionManager_InTransaction(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		tm, _, mock, cleanup := newMockTxManager(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leads WHERE id = $1")).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tm.InTransaction(context.Background(), func(ctx context.Context, tx repositories.Transaction) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM leads WHERE id = $1", int64(5))
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		tm, _, mock, cleanup := newMockTxManager(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := tm.InTransaction(context.Background(), func(ctx context.Context, tx repositories.Transaction) error {
			return boom
		})

		assert.True(t, errors.Is(err, boom))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("queries inside the function run on the transaction", func(t *testing.T) {
		tm, db, mock, cleanup := newMockTxManager(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM clients")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
		mock.ExpectCommit()

		err := tm.InTransaction(context.Background(), func(ctx context.Context, _ repositories.Transaction) error {
			// GetExecutor must pick up the in-context transaction
			executor := GetExecutor(ctx, db)

			var count int64
			return executor.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients").Scan(&count)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetExecutor(t *testing.T) {
	t.Run("falls back to the connection pool without a transaction", func(t *testing.T) {
		sqlDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		db := &DB{DB: sqlDB, logger: zap.NewNop()}
		executor := GetExecutor(context.Background(), db)

		assert.Equal(t, db.DB, executor)
	})
}
