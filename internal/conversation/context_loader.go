package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/internal/scheduling"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

// ErrBusinessNotFound means the caller reached a business we have no profile
// for. The turn cannot proceed.
var ErrBusinessNotFound = errors.New("conversation: business not found")

// reservationLookahead bounds the forward window of upcoming reservations
// fetched per turn.
const reservationLookaheadDays = 7

// BusinessContext is everything a turn needs to know about the business,
// assembled once per utterance.
type BusinessContext struct {
	Profile   *business.Profile
	Services  []business.Service
	Knowledge []business.KnowledgeEntry
	Upcoming  []scheduling.Reservation
	OpenNow   bool
	LocalTime time.Time
}

// ContextLoader fans out the per-turn reads.
type ContextLoader struct {
	profiles *business.Store
	catalog  business.CatalogRepository
	schedule scheduling.Repository
	logger   *logging.Logger
	now      func() time.Time
}

// NewContextLoader wires the loader. The profile store is mandatory; catalog
// and schedule reads degrade to empty slices when their backends error.
func NewContextLoader(profiles *business.Store, catalog business.CatalogRepository, schedule scheduling.Repository, logger *logging.Logger) *ContextLoader {
	if profiles == nil {
		panic("conversation: profile store cannot be nil")
	}
	if catalog == nil {
		panic("conversation: catalog repository cannot be nil")
	}
	if schedule == nil {
		panic("conversation: scheduling repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ContextLoader{
		profiles: profiles,
		catalog:  catalog,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Load fetches the profile, service catalog, knowledge base, and upcoming
// reservations concurrently. A missing profile fails the load; the secondary
// reads are best effort so a flaky catalog never drops a call.
func (l *ContextLoader) Load(ctx context.Context, businessID string) (*BusinessContext, error) {
	var (
		wg      sync.WaitGroup
		profile *business.Profile
		profErr error

		services []business.Service
		entries  []business.KnowledgeEntry
		upcoming []scheduling.Reservation
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		profile, profErr = l.profiles.Get(ctx, businessID)
	}()
	go func() {
		defer wg.Done()
		var err error
		services, err = l.catalog.ListActiveServices(ctx, businessID)
		if err != nil {
			l.logger.Error("service catalog load failed", "error", err, "business_id", businessID)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		entries, err = l.catalog.ListKnowledge(ctx, businessID)
		if err != nil {
			l.logger.Error("knowledge base load failed", "error", err, "business_id", businessID)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		upcoming, err = l.schedule.ListScheduled(ctx, businessID, l.now(), reservationLookaheadDays)
		if err != nil {
			l.logger.Error("upcoming reservations load failed", "error", err, "business_id", businessID)
		}
	}()
	wg.Wait()

	if profErr != nil {
		if errors.Is(profErr, business.ErrProfileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBusinessNotFound, businessID)
		}
		return nil, fmt.Errorf("conversation: load business context: %w", profErr)
	}

	localNow := l.now().In(profile.Location())
	return &BusinessContext{
		Profile:   profile,
		Services:  services,
		Knowledge: entries,
		Upcoming:  upcoming,
		OpenNow:   profile.IsOpenAt(localNow),
		LocalTime: localNow,
	}, nil
}

// KnowledgeContext renders the knowledge base as prompt text for the
// question-answering path.
func (c *BusinessContext) KnowledgeContext() string {
	if len(c.Knowledge) == 0 && len(c.Services) == 0 {
		return ""
	}
	var b []byte
	if len(c.Services) > 0 {
		b = append(b, "Services offered:\n"...)
		for _, s := range c.Services {
			b = append(b, fmt.Sprintf("- %s (%d minutes)\n", s.Name, s.DurationMinutes)...)
		}
	}
	if len(c.Knowledge) > 0 {
		b = append(b, "Known questions and answers:\n"...)
		for _, k := range c.Knowledge {
			b = append(b, fmt.Sprintf("Q: %s\nA: %s\n", k.Question, k.Answer)...)
		}
	}
	return string(b)
}

// QuoteRequired reports whether the utterance mentions a service the
// business requires a human quote for.
func (c *BusinessContext) QuoteRequired(utterance string) bool {
	if len(c.Profile.QuoteRequiredServices) == 0 {
		return false
	}
	lowered := strings.ToLower(utterance)
	for _, svc := range c.Profile.QuoteRequiredServices {
		if svc != "" && strings.Contains(lowered, strings.ToLower(svc)) {
			return true
		}
	}
	return false
}
