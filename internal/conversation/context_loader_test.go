package conversation

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/platform/internal/business"
	"github.com/frontdesk-ai/platform/internal/scheduling"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

func newTestLoader(t *testing.T) (*ContextLoader, *business.Store, *business.InMemoryCatalogRepository, *scheduling.InMemoryRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := business.NewStore(client)
	catalog := business.NewInMemoryCatalogRepository()
	schedule := scheduling.NewInMemoryRepository()
	loader := NewContextLoader(store, catalog, schedule, logging.Default())
	return loader, store, catalog, schedule
}

func TestLoadAssemblesContext(t *testing.T) {
	loader, store, catalog, _ := newTestLoader(t)
	ctx := context.Background()

	profile := business.DefaultProfile("biz-1")
	profile.Name = "Harbor Grill"
	require.NoError(t, store.Set(ctx, profile))

	catalog.AddService(business.Service{ID: "svc-1", BusinessID: "biz-1", Name: "Private dining", DurationMinutes: 90, Active: true})
	catalog.AddKnowledge(business.KnowledgeEntry{ID: "kb-1", BusinessID: "biz-1", Question: "Do you have parking?", Answer: "Yes, behind the building."})

	got, err := loader.Load(ctx, "biz-1")
	require.NoError(t, err)

	assert.Equal(t, "Harbor Grill", got.Profile.Name)
	require.Len(t, got.Services, 1)
	require.Len(t, got.Knowledge, 1)
	assert.Equal(t, "America/New_York", got.LocalTime.Location().String())
}

func TestLoadMissingProfile(t *testing.T) {
	loader, _, _, _ := newTestLoader(t)

	_, err := loader.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestKnowledgeContextRendersFacts(t *testing.T) {
	bizCtx := &BusinessContext{
		Services: []business.Service{{Name: "Haircut", DurationMinutes: 30}},
		Knowledge: []business.KnowledgeEntry{
			{Question: "Do you take walk-ins?", Answer: "Weekdays before noon."},
		},
	}

	rendered := bizCtx.KnowledgeContext()
	assert.Contains(t, rendered, "Haircut (30 minutes)")
	assert.Contains(t, rendered, "Do you take walk-ins?")
	assert.Contains(t, rendered, "Weekdays before noon.")

	assert.Empty(t, (&BusinessContext{}).KnowledgeContext())
}

func TestQuoteRequired(t *testing.T) {
	profile := business.DefaultProfile("biz-1")
	profile.QuoteRequiredServices = []string{"wedding", "catering"}
	bizCtx := &BusinessContext{Profile: profile}

	assert.True(t, bizCtx.QuoteRequired("I need Catering for fifty people"))
	assert.False(t, bizCtx.QuoteRequired("table for two tonight"))
}
