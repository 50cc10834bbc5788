package scheduling

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_CountAtSlot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("biz-1", "2025-06-02", "14:00:00", StatusScheduled).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountAtSlot(context.Background(), "biz-1", "2025-06-02", "14:00:00")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO reservations").
		WithArgs(pgxmock.AnyArg(), "biz-1", "2025-06-02", "14:00:00", "Alex", "5551234567", "", 4, "", StatusScheduled).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	res := &Reservation{
		BusinessID: "biz-1",
		Date:       "2025-06-02",
		Time:       "14:00:00",
		Name:       "Alex",
		Phone:      "5551234567",
		PartySize:  4,
	}
	require.NoError(t, repo.Insert(context.Background(), res))
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, StatusScheduled, res.Status)
	assert.Equal(t, now, res.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListScheduled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "business_id", "date", "time", "name", "phone", "email", "party_size", "notes", "status", "created_at"}).
		AddRow("res-1", "biz-1", "2025-06-02", "14:00:00", "Alex", "5551234567", "", 4, "", StatusScheduled, now)
	mock.ExpectQuery("SELECT id, business_id, date").
		WithArgs("biz-1", StatusScheduled, "2025-06-01", "2025-06-08").
		WillReturnRows(rows)

	from := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	out, err := repo.ListScheduled(context.Background(), "biz-1", from, 7)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "14:00:00", out[0].Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInMemoryRepository_SevenDayWindow(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, date := range []string{"2025-06-02", "2025-06-07", "2025-06-09"} {
		require.NoError(t, repo.Insert(ctx, &Reservation{
			BusinessID: "biz-1", Date: date, Time: "10:00:00", Name: "X", Phone: "5551234567", PartySize: 1,
		}))
	}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out, err := repo.ListScheduled(ctx, "biz-1", from, 7)
	require.NoError(t, err)
	require.Len(t, out, 2, "reservation outside window excluded")
}
