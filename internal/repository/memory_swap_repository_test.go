package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"skill-swap/internal/domain/swap"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func pending(t *testing.T, a, b uuid.UUID, offered, requested string, at time.Time) swap.Swap {
	t.Helper()
	s, err := swap.NewPending(swap.ProposeInput{
		Proposer: a, Counterpart: b, SkillOffered: offered, SkillRequested: requested,
	}, uuid.New(), at)
	require.NoError(t, err)
	return s
}

func TestMemorySwapRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySwapRepository()
	s := pending(t, uuid.New(), uuid.New(), "Go", "Rust", base)

	created, err := repo.Create(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusPending, got.Status)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSwapNotFound)
}

func TestMemorySwapRepository_DuplicateActivePair(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySwapRepository()
	a, b := uuid.New(), uuid.New()

	_, err := repo.Create(ctx, pending(t, a, b, "Go", "Rust", base))
	require.NoError(t, err)

	_, err = repo.Create(ctx, pending(t, b, a, "rust", "go", base))
	assert.ErrorIs(t, err, ErrSwapDuplicate)

	found, ok, err := repo.FindConflicting(ctx, b, a, "Rust", "Go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a, found.Proposer)
}

func TestMemorySwapRepository_TerminalFreesPair(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySwapRepository()
	a, b := uuid.New(), uuid.New()
	first, err := repo.Create(ctx, pending(t, a, b, "Go", "Rust", base))
	require.NoError(t, err)

	_, err = repo.Update(ctx, first.ID, func(s *swap.Swap) error {
		return s.Cancel(a, base.Add(time.Minute))
	})
	require.NoError(t, err)

	_, ok, err := repo.FindConflicting(ctx, a, b, "Go", "Rust")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Create(ctx, pending(t, a, b, "Go", "Rust", base.Add(time.Hour)))
	assert.NoError(t, err)
}

func TestMemorySwapRepository_SaveStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySwapRepository()
	created, err := repo.Create(ctx, pending(t, uuid.New(), uuid.New(), "Go", "Rust", base))
	require.NoError(t, err)

	first := created.Clone()
	require.NoError(t, first.Respond(first.Counterpart, swap.DecisionAccept, base))
	saved, err := repo.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	stale := created.Clone()
	require.NoError(t, stale.Cancel(stale.Proposer, base))
	_, err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, ErrSwapVersionConflict)
}

func TestMemorySwapRepository_UpdateErrorLeavesRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySwapRepository()
	created, err := repo.Create(ctx, pending(t, uuid.New(), uuid.New(), "Go", "Rust", base))
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, func(s *swap.Swap) error {
		return s.Respond(s.Proposer, swap.DecisionAccept, base)
	})
	assert.ErrorIs(t, err, swap.ErrAuthorization)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusPending, got.Status)
	assert.Equal(t, int64(1), got.Version)
}

func TestMemorySwapRepository_ConcurrentRatings(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySwapRepository()
	created, err := repo.Create(ctx, pending(t, uuid.New(), uuid.New(), "Logo Design", "Web Development", base))
	require.NoError(t, err)
	_, err = repo.Update(ctx, created.ID, func(s *swap.Swap) error {
		return s.Respond(s.Counterpart, swap.DecisionAccept, base)
	})
	require.NoError(t, err)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		completions int
	)
	rate := func(actor uuid.UUID, value int) {
		defer wg.Done()
		_, err := repo.Update(ctx, created.ID, func(s *swap.Swap) error {
			done, err := s.Rate(actor, value, "", base.Add(time.Hour))
			if done {
				mu.Lock()
				completions++
				mu.Unlock()
			}
			return err
		})
		assert.NoError(t, err)
	}
	wg.Add(2)
	go rate(created.Proposer, 5)
	go rate(created.Counterpart, 4)
	wg.Wait()

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusCompleted, got.Status)
	assert.Equal(t, 1, completions)
	require.NotNil(t, got.RatingOfCounterpart)
	require.NotNil(t, got.RatingOfProposer)
	assert.Equal(t, 5, got.RatingOfCounterpart.Value)
	assert.Equal(t, 4, got.RatingOfProposer.Value)
}

func TestMemorySwapRepository_ListsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySwapRepository()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	older, err := repo.Create(ctx, pending(t, a, b, "Go", "Rust", base))
	require.NoError(t, err)
	newer, err := repo.Create(ctx, pending(t, c, a, "SQL", "Go", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, pending(t, b, c, "Drums", "Bass", base.Add(2*time.Hour)))
	require.NoError(t, err)

	items, err := repo.FindActiveForUser(ctx, a)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, older.ID, items[1].ID)
	for _, s := range items {
		assert.True(t, s.IsParticipant(a))
	}

	done, err := repo.FindCompletedForUser(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestMemoryDirectory_SkillLookup(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory()
	id := uuid.New()
	d.Offer(id, "Logo  Design", 4, 2)
	d.Want(id, "Web Development")

	us, err := d.FindOffered(ctx, id, "logo design")
	require.NoError(t, err)
	assert.Equal(t, 4, us.ProficiencyLevel)

	_, err = d.FindOffered(ctx, id, "Go")
	assert.ErrorIs(t, err, ErrUserSkillNotFound)

	wants, err := d.Wants(ctx, id, " web development ")
	require.NoError(t, err)
	assert.True(t, wants)
}
