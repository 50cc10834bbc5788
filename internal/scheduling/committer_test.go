package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommitter(repo *InMemoryRepository) *Committer {
	engine := NewEngine(repo, nil)
	return NewCommitter(repo, engine, nil)
}

func TestCommit_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	committer := newCommitter(repo)
	biz := monFri0917()

	res, err := committer.Commit(context.Background(), biz, BookingRequest{
		BusinessID: biz.ID,
		Date:       "2025-06-02",
		Time:       "14:00:00",
		Name:       "Alex",
		Phone:      "5551234567",
		PartySize:  4,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, StatusScheduled, res.Status)
	assert.Equal(t, 4, res.PartySize)

	count, err := repo.CountAtSlot(context.Background(), biz.ID, "2025-06-02", "14:00:00")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCommit_PartySizeDefaultsToOne(t *testing.T) {
	repo := NewInMemoryRepository()
	committer := newCommitter(repo)

	res, err := committer.Commit(context.Background(), monFri0917(), BookingRequest{
		Date: "2025-06-02", Time: "10:00:00", Name: "Sam", Phone: "5551234567",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PartySize)
}

func TestCommit_SlotFilledBetweenCheckAndWrite(t *testing.T) {
	repo := NewInMemoryRepository()
	committer := newCommitter(repo)
	biz := monFri0917()

	// Another call takes the slot first.
	seed(t, repo, "2025-06-02", "14:00:00")

	_, err := committer.Commit(context.Background(), biz, BookingRequest{
		Date: "2025-06-02", Time: "14:00:00", Name: "Alex", Phone: "5551234567",
	})
	assert.ErrorIs(t, err, ErrSlotFull)

	// The losing commit must not have written anything.
	count, err := repo.CountAtSlot(context.Background(), biz.ID, "2025-06-02", "14:00:00")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCommit_NeverExceedsObservedCapacity(t *testing.T) {
	repo := NewInMemoryRepository()
	committer := newCommitter(repo)
	biz := monFri0917()
	biz.MaxAppointmentsPerSlot = 2

	for i := 0; i < 5; i++ {
		_, err := committer.Commit(context.Background(), biz, BookingRequest{
			Date: "2025-06-02", Time: "11:00:00", Name: "Caller", Phone: "5551234567",
		})
		if i < 2 {
			require.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, ErrSlotFull)
		}
	}

	count, err := repo.CountAtSlot(context.Background(), biz.ID, "2025-06-02", "11:00:00")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCommit_InsertFailureSurfaces(t *testing.T) {
	repo := NewInMemoryRepository()
	committer := newCommitter(repo)

	repo.FailNextInsert(errors.New("connection reset"))

	_, err := committer.Commit(context.Background(), monFri0917(), BookingRequest{
		Date: "2025-06-02", Time: "14:00:00", Name: "Alex", Phone: "5551234567",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotFull)
}

func TestAlternatives_ReflectCurrentData(t *testing.T) {
	repo := NewInMemoryRepository()
	committer := newCommitter(repo)
	biz := monFri0917()

	seed(t, repo, "2025-06-02", "14:00:00")
	seed(t, repo, "2025-06-02", "13:30:00")

	alts, err := committer.Alternatives(context.Background(), biz, "2025-06-02", "14:00:00")
	require.NoError(t, err)
	assert.NotContains(t, alts, "13:30:00")
	assert.NotContains(t, alts, "14:00:00")
}
