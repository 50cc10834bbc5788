package business

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrProfileNotFound indicates the business has not been provisioned.
var ErrProfileNotFound = errors.New("business: profile not found")

// Store persists business profiles in Redis. The profile is the authority
// boundary for every turn: unknown business IDs fail the request.
type Store struct {
	redis             *redis.Client
	defaultConfidence float64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDefaultConfidence sets the confidence threshold applied to profiles
// that do not carry their own.
func WithDefaultConfidence(threshold float64) StoreOption {
	return func(s *Store) {
		if threshold > 0 && threshold <= 1 {
			s.defaultConfidence = threshold
		}
	}
}

// NewStore creates a profile store.
func NewStore(redisClient *redis.Client, opts ...StoreOption) *Store {
	if redisClient == nil {
		panic("business: redis client required")
	}
	s := &Store{redis: redisClient, defaultConfidence: defaultConfidenceThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(businessID string) string {
	return fmt.Sprintf("business:profile:%s", businessID)
}

// Get retrieves a profile. Unlike general settings lookups there is no
// default fallback: a missing profile means the tenant does not exist.
func (s *Store) Get(ctx context.Context, businessID string) (*Profile, error) {
	data, err := s.redis.Get(ctx, s.key(businessID)).Bytes()
	if err == redis.Nil {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("business: get profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("business: unmarshal profile: %w", err)
	}
	s.applyProfileDefaults(&p)
	return &p, nil
}

// Set saves a profile.
func (s *Store) Set(ctx context.Context, p *Profile) error {
	if p == nil || p.ID == "" {
		return errors.New("business: profile id required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("business: marshal profile: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(p.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("business: set profile: %w", err)
	}
	return nil
}

// applyProfileDefaults fills zero-valued tuning knobs so stored profiles
// written by older versions keep working.
func (s *Store) applyProfileDefaults(p *Profile) {
	if p.SlotDurationMinutes <= 0 {
		p.SlotDurationMinutes = 30
	}
	if p.MaxAppointmentsPerSlot <= 0 {
		p.MaxAppointmentsPerSlot = 1
	}
	if p.ConfidenceThreshold <= 0 {
		p.ConfidenceThreshold = s.defaultConfidence
	}
	if p.Timezone == "" {
		p.Timezone = "America/New_York"
	}
}
