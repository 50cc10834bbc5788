// Package calllog persists per-call summaries to PostgreSQL for long-term
// history and operator review.
package calllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CallRecord is one finished or in-progress call.
type CallRecord struct {
	ID             uuid.UUID `json:"id"`
	BusinessID     string    `json:"business_id"`
	CallerPhone    string    `json:"caller_phone"`
	TurnCount      int       `json:"turn_count"`
	FinalState     string    `json:"final_state"`
	HasAppointment bool      `json:"has_appointment"`
	NeedsMessage   bool      `json:"needs_message"`
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ErrCallNotFound indicates no record exists for the requested call.
var ErrCallNotFound = errors.New("calllog: call not found")

// Store writes call records to PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a call log store. Returns nil when history persistence is
// not configured.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// Record upserts the call's latest state. Call identity is the business plus
// the caller's phone plus the calendar day, so repeated turns of one call
// collapse into one row.
func (s *Store) Record(ctx context.Context, rec CallRecord) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_log (
			id, business_id, caller_phone, turn_count, final_state,
			has_appointment, needs_message, started_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (business_id, caller_phone, (started_at::date)) DO UPDATE SET
			turn_count = EXCLUDED.turn_count,
			final_state = EXCLUDED.final_state,
			has_appointment = EXCLUDED.has_appointment,
			needs_message = EXCLUDED.needs_message,
			updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.BusinessID, rec.CallerPhone, rec.TurnCount, rec.FinalState,
		rec.HasAppointment, rec.NeedsMessage, rec.StartedAt, now,
	)
	if err != nil {
		return fmt.Errorf("calllog: record call: %w", err)
	}
	return nil
}

// ListRecent returns the latest calls for a business, newest first.
func (s *Store) ListRecent(ctx context.Context, businessID string, limit int) ([]CallRecord, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, business_id, caller_phone, turn_count, final_state,
			has_appointment, needs_message, started_at, updated_at
		FROM call_log
		WHERE business_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`,
		businessID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("calllog: list recent calls: %w", err)
	}
	defer rows.Close()

	var records []CallRecord
	for rows.Next() {
		var rec CallRecord
		if err := rows.Scan(
			&rec.ID, &rec.BusinessID, &rec.CallerPhone, &rec.TurnCount, &rec.FinalState,
			&rec.HasAppointment, &rec.NeedsMessage, &rec.StartedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("calllog: scan call record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("calllog: iterate call records: %w", err)
	}
	return records, nil
}

// Get fetches one call by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*CallRecord, error) {
	if s == nil {
		return nil, ErrCallNotFound
	}

	var rec CallRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, caller_phone, turn_count, final_state,
			has_appointment, needs_message, started_at, updated_at
		FROM call_log
		WHERE id = $1`,
		id,
	).Scan(
		&rec.ID, &rec.BusinessID, &rec.CallerPhone, &rec.TurnCount, &rec.FinalState,
		&rec.HasAppointment, &rec.NeedsMessage, &rec.StartedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("calllog: get call: %w", err)
	}
	return &rec, nil
}
