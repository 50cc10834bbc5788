package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists reservations. Every read is scoped by business ID
// because the memory blob naming the business is caller supplied.
type Repository interface {
	CountAtSlot(ctx context.Context, businessID, date, slotTime string) (int, error)
	Insert(ctx context.Context, r *Reservation) error
	ListScheduled(ctx context.Context, businessID string, from time.Time, days int) ([]Reservation, error)
}

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores reservations in the relational database.
type PostgresRepository struct {
	pool Querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool Querier) *PostgresRepository {
	if pool == nil {
		panic("scheduling: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

// CountAtSlot returns the number of scheduled reservations in one bucket.
func (r *PostgresRepository) CountAtSlot(ctx context.Context, businessID, date, slotTime string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE business_id = $1 AND date = $2 AND time = $3 AND status = $4
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, businessID, date, slotTime, StatusScheduled).Scan(&count); err != nil {
		return 0, fmt.Errorf("scheduling: count slot: %w", err)
	}
	return count, nil
}

// Insert writes a new reservation row.
func (r *PostgresRepository) Insert(ctx context.Context, res *Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.Status == "" {
		res.Status = StatusScheduled
	}
	query := `
		INSERT INTO reservations (id, business_id, date, time, name, phone, email, party_size, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		res.ID,
		res.BusinessID,
		res.Date,
		res.Time,
		res.Name,
		res.Phone,
		res.Email,
		res.PartySize,
		res.Notes,
		res.Status,
	).Scan(&res.CreatedAt); err != nil {
		return fmt.Errorf("scheduling: insert reservation: %w", err)
	}
	return nil
}

// ListScheduled returns scheduled reservations inside a forward window.
func (r *PostgresRepository) ListScheduled(ctx context.Context, businessID string, from time.Time, days int) ([]Reservation, error) {
	start := from.Format(DateLayout)
	end := from.AddDate(0, 0, days).Format(DateLayout)
	query := `
		SELECT id, business_id, date, time, name, phone, email, party_size, notes, status, created_at
		FROM reservations
		WHERE business_id = $1 AND status = $2 AND date >= $3 AND date < $4
		ORDER BY date, time
	`
	rows, err := r.pool.Query(ctx, query, businessID, StatusScheduled, start, end)
	if err != nil {
		return nil, fmt.Errorf("scheduling: list scheduled: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(
			&res.ID,
			&res.BusinessID,
			&res.Date,
			&res.Time,
			&res.Name,
			&res.Phone,
			&res.Email,
			&res.PartySize,
			&res.Notes,
			&res.Status,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scheduling: scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scheduling: read reservations: %w", err)
	}
	return out, nil
}

// InMemoryRepository backs tests and local development.
type InMemoryRepository struct {
	mu           sync.RWMutex
	reservations []Reservation

	// failNextInsert simulates a datastore write error.
	failNextInsert error
}

// NewInMemoryRepository creates an empty in-memory reservation store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

var _ Repository = (*InMemoryRepository)(nil)

// FailNextInsert makes the next Insert return the supplied error.
func (m *InMemoryRepository) FailNextInsert(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNextInsert = err
}

// CountAtSlot counts scheduled reservations in one bucket.
func (m *InMemoryRepository) CountAtSlot(ctx context.Context, businessID, date, slotTime string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.reservations {
		if r.BusinessID == businessID && r.Date == date && r.Time == slotTime && r.Status == StatusScheduled {
			count++
		}
	}
	return count, nil
}

// Insert appends a reservation.
func (m *InMemoryRepository) Insert(ctx context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNextInsert != nil {
		err := m.failNextInsert
		m.failNextInsert = nil
		return err
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = StatusScheduled
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.reservations = append(m.reservations, *r)
	return nil
}

// ListScheduled returns scheduled reservations inside a forward window.
func (m *InMemoryRepository) ListScheduled(ctx context.Context, businessID string, from time.Time, days int) ([]Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := from.Format(DateLayout)
	end := from.AddDate(0, 0, days).Format(DateLayout)

	var out []Reservation
	for _, r := range m.reservations {
		if r.BusinessID != businessID || r.Status != StatusScheduled {
			continue
		}
		if r.Date >= start && r.Date < end {
			out = append(out, r)
		}
	}
	return out, nil
}
