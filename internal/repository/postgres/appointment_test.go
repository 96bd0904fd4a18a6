package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotTaken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewBaseRepository(db))
	doctorID := uuid.New()
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(doctorID, date, "10:00").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.SlotTaken(context.Background(), doctorID, date, "10:00", nil)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotTakenExcludesOwnRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewBaseRepository(db))
	doctorID := uuid.New()
	excludeID := uuid.New()
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(doctorID, date, "10:00", excludeID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.SlotTaken(context.Background(), doctorID, date, "10:00", &excludeID)
	require.NoError(t, err)
	assert.False(t, taken)
}
