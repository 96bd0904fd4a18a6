package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestMarkAllReadReturnsAffectedCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(NewBaseRepository(db))
	userID := uuid.New()

	mock.ExpectExec(`UPDATE notifications`).
		WithArgs(sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAllReadZeroIsSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(NewBaseRepository(db))
	userID := uuid.New()

	mock.ExpectExec(`UPDATE notifications`).
		WithArgs(sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	count, err := repo.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkReadMissingNotification(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(NewBaseRepository(db))
	id := uuid.New()

	mock.ExpectExec(`UPDATE notifications`).
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
