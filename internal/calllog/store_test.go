package calllog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO call_log").
		WithArgs(
			sqlmock.AnyArg(), "biz-1", "5551234567", 3, "booking_commit",
			true, false, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db)
	err = store.Record(context.Background(), CallRecord{
		BusinessID:     "biz-1",
		CallerPhone:    "5551234567",
		TurnCount:      3,
		FinalState:     "booking_commit",
		HasAppointment: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	id := uuid.New()
	rows := sqlmock.NewRows([]string{
		"id", "business_id", "caller_phone", "turn_count", "final_state",
		"has_appointment", "needs_message", "started_at", "updated_at",
	}).AddRow(id, "biz-1", "5551234567", 5, "goodbye", true, false, now, now)

	mock.ExpectQuery("SELECT (.+) FROM call_log").
		WithArgs("biz-1", 10).
		WillReturnRows(rows)

	store := NewStore(db)
	got, err := store.ListRecent(context.Background(), "biz-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "goodbye", got[0].FinalState)
	assert.True(t, got[0].HasAppointment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM call_log").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewStore(db)
	_, err = store.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrCallNotFound)
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	assert.NoError(t, store.Record(context.Background(), CallRecord{}))

	records, err := store.ListRecent(context.Background(), "biz-1", 10)
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestNewStoreNilDB(t *testing.T) {
	assert.Nil(t, NewStore(nil))
}
