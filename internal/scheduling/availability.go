package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

const (
	maxAlternatives         = 3
	maxBackwardAlternatives = 2
	probeSteps              = 3
)

// Engine answers slot availability questions for a business.
type Engine struct {
	repo   Repository
	logger *logging.Logger
}

// NewEngine creates an availability engine.
func NewEngine(repo Repository, logger *logging.Logger) *Engine {
	if repo == nil {
		panic("scheduling: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{repo: repo, logger: logger}
}

// CheckAvailability reports whether one slot bucket has capacity. A slot
// outside the weekday's open window comes back Closed with no count.
func (e *Engine) CheckAvailability(ctx context.Context, biz *business.Profile, date, slotTime string) (SlotAvailability, error) {
	slot, err := parseSlot(biz, date, slotTime)
	if err != nil {
		return SlotAvailability{}, err
	}

	if !e.withinOpenWindow(biz, slot) {
		return SlotAvailability{Closed: true, Capacity: biz.MaxAppointmentsPerSlot}, nil
	}

	count, err := e.repo.CountAtSlot(ctx, biz.ID, date, slotTime)
	if err != nil {
		return SlotAvailability{}, err
	}

	return SlotAvailability{
		Available: count < biz.MaxAppointmentsPerSlot,
		Count:     count,
		Capacity:  biz.MaxAppointmentsPerSlot,
	}, nil
}

// FindAlternatives searches outward from the requested slot in steps of one
// slot duration: up to three steps backward collecting at most two open
// slots, then up to three steps forward collecting at most three. Backward
// results are listed first and the final list never exceeds three entries.
func (e *Engine) FindAlternatives(ctx context.Context, biz *business.Profile, date, slotTime string) ([]string, error) {
	slot, err := parseSlot(biz, date, slotTime)
	if err != nil {
		return nil, err
	}

	step := time.Duration(biz.SlotDurationMinutes) * time.Minute

	var alternatives []string

	for i := 1; i <= probeSteps && len(alternatives) < maxBackwardAlternatives; i++ {
		candidate := slot.Add(-time.Duration(i) * step)
		ok, err := e.candidateOpen(ctx, biz, candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			alternatives = append(alternatives, candidate.Format(TimeLayout))
		}
	}

	for i := 1; i <= probeSteps && len(alternatives) < maxAlternatives; i++ {
		candidate := slot.Add(time.Duration(i) * step)
		ok, err := e.candidateOpen(ctx, biz, candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			alternatives = append(alternatives, candidate.Format(TimeLayout))
		}
	}

	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	return alternatives, nil
}

func (e *Engine) candidateOpen(ctx context.Context, biz *business.Profile, candidate time.Time) (bool, error) {
	if !e.withinOpenWindow(biz, candidate) {
		return false, nil
	}
	count, err := e.repo.CountAtSlot(ctx, biz.ID, candidate.Format(DateLayout), candidate.Format(TimeLayout))
	if err != nil {
		return false, err
	}
	return count < biz.MaxAppointmentsPerSlot, nil
}

// withinOpenWindow requires the whole slot to fit inside the day's window.
func (e *Engine) withinOpenWindow(biz *business.Profile, slot time.Time) bool {
	open, close, ok := biz.OpenWindowOn(slot)
	if !ok {
		return false
	}
	end := slot.Add(time.Duration(biz.SlotDurationMinutes) * time.Minute)
	return !slot.Before(open) && !end.After(close)
}

func parseSlot(biz *business.Profile, date, slotTime string) (time.Time, error) {
	slot, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+slotTime, biz.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("scheduling: parse slot %q %q: %w", date, slotTime, err)
	}
	return slot, nil
}
