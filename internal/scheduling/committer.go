package scheduling

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

var commitTracer = otel.Tracer("frontdesk.internal.scheduling.committer")

// Committer performs the write phase of a booking. The availability engine's
// check is advisory; the committer re-counts the slot immediately before the
// insert to shrink the race window between two concurrent calls. The
// datastore only offers read-then-write, so this is best effort, not a
// serializable guarantee.
type Committer struct {
	repo   Repository
	engine *Engine
	logger *logging.Logger
}

// NewCommitter creates a booking committer.
func NewCommitter(repo Repository, engine *Engine, logger *logging.Logger) *Committer {
	if repo == nil {
		panic("scheduling: repository cannot be nil")
	}
	if engine == nil {
		panic("scheduling: engine cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Committer{repo: repo, engine: engine, logger: logger}
}

// Commit re-checks capacity and persists the reservation. ErrSlotFull means
// the slot filled since the advisory check; callers re-run the alternative
// search against current data. Any other error is a datastore failure.
func (c *Committer) Commit(ctx context.Context, biz *business.Profile, req BookingRequest) (*Reservation, error) {
	ctx, span := commitTracer.Start(ctx, "booking.commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("business.id", biz.ID),
		attribute.String("slot.date", req.Date),
		attribute.String("slot.time", req.Time),
	)

	partySize := req.PartySize
	if partySize <= 0 {
		partySize = 1
	}

	// Phase 2: last read before the write.
	count, err := c.repo.CountAtSlot(ctx, biz.ID, req.Date, req.Time)
	if err != nil {
		return nil, fmt.Errorf("scheduling: recheck slot: %w", err)
	}
	if count >= biz.MaxAppointmentsPerSlot {
		c.logger.Info("slot filled before commit",
			"business_id", biz.ID, "date", req.Date, "time", req.Time,
			"count", count, "capacity", biz.MaxAppointmentsPerSlot)
		return nil, ErrSlotFull
	}

	res := &Reservation{
		BusinessID: biz.ID,
		Date:       req.Date,
		Time:       req.Time,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		PartySize:  partySize,
		Notes:      req.Notes,
		Status:     StatusScheduled,
	}
	if err := c.repo.Insert(ctx, res); err != nil {
		return nil, fmt.Errorf("scheduling: commit reservation: %w", err)
	}

	c.logger.Info("reservation committed",
		"business_id", biz.ID, "reservation_id", res.ID,
		"date", res.Date, "time", res.Time, "party_size", res.PartySize)
	return res, nil
}

// Alternatives re-runs the alternative search against current data, used
// after a commit loses the race.
func (c *Committer) Alternatives(ctx context.Context, biz *business.Profile, date, slotTime string) ([]string, error) {
	return c.engine.FindAlternatives(ctx, biz, date, slotTime)
}
