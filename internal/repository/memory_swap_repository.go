package repository

import (
	"context"
	"sort"
	"sync"

	"skill-swap/internal/domain/swap"

	"github.com/google/uuid"
)

// MemorySwapRepository keeps swaps in process. Writes to one swap are
// serialized by a per-id lock and every write is checked against the version.
type MemorySwapRepository struct {
	mu      sync.RWMutex
	swaps   map[uuid.UUID]swap.Swap
	active  map[string]uuid.UUID // pair key -> active swap id
	rowLock sync.Map             // uuid.UUID -> *sync.Mutex
}

func NewMemorySwapRepository() *MemorySwapRepository {
	return &MemorySwapRepository{
		swaps:  make(map[uuid.UUID]swap.Swap),
		active: make(map[string]uuid.UUID),
	}
}

func (r *MemorySwapRepository) Get(_ context.Context, id uuid.UUID) (swap.Swap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.swaps[id]
	if !ok {
		return swap.Swap{}, ErrSwapNotFound
	}
	return s.Clone(), nil
}

func (r *MemorySwapRepository) Create(_ context.Context, s swap.Swap) (swap.Swap, error) {
	if err := s.CheckInvariants(); err != nil {
		return swap.Swap{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.swaps[s.ID]; exists {
		return swap.Swap{}, ErrSwapDuplicate
	}
	key := s.PairKey()
	if s.Status.Active() {
		if _, taken := r.active[key]; taken {
			return swap.Swap{}, ErrSwapDuplicate
		}
		r.active[key] = s.ID
	}

	s.Version = 1
	r.swaps[s.ID] = s.Clone()
	return s.Clone(), nil
}

func (r *MemorySwapRepository) Save(_ context.Context, s swap.Swap) (swap.Swap, error) {
	if err := s.CheckInvariants(); err != nil {
		return swap.Swap{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(s)
}

func (r *MemorySwapRepository) saveLocked(s swap.Swap) (swap.Swap, error) {
	cur, ok := r.swaps[s.ID]
	if !ok {
		return swap.Swap{}, ErrSwapNotFound
	}
	if cur.Version != s.Version {
		return swap.Swap{}, ErrSwapVersionConflict
	}

	key := cur.PairKey()
	if cur.Status.Active() && !s.Status.Active() {
		if r.active[key] == s.ID {
			delete(r.active, key)
		}
	}

	out := s.Clone()
	out.Version = cur.Version + 1
	r.swaps[s.ID] = out
	return out.Clone(), nil
}

func (r *MemorySwapRepository) Update(ctx context.Context, id uuid.UUID, fn MutateFunc) (swap.Swap, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	cur, err := r.Get(ctx, id)
	if err != nil {
		return swap.Swap{}, err
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return swap.Swap{}, err
	}
	if err := next.CheckInvariants(); err != nil {
		return swap.Swap{}, err
	}
	next.Version = cur.Version

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(next)
}

func (r *MemorySwapRepository) FindActiveForUser(_ context.Context, userID uuid.UUID) ([]swap.Swap, error) {
	out := r.filter(func(s swap.Swap) bool {
		return s.IsParticipant(userID) && s.Status.Active()
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemorySwapRepository) FindCompletedForUser(_ context.Context, userID uuid.UUID) ([]swap.Swap, error) {
	out := r.filter(func(s swap.Swap) bool {
		return s.IsParticipant(userID) && s.Status == swap.StatusCompleted
	})
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].CompletedAt, out[j].CompletedAt
		if ci == nil || cj == nil || ci.Equal(*cj) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return ci.After(*cj)
	})
	return out, nil
}

func (r *MemorySwapRepository) FindConflicting(_ context.Context, userA, userB uuid.UUID, skillOffered, skillRequested string) (swap.Swap, bool, error) {
	key := swap.PairKey(userA, userB, skillOffered, skillRequested)

	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.active[key]
	if !ok {
		return swap.Swap{}, false, nil
	}
	return r.swaps[id].Clone(), true, nil
}

func (r *MemorySwapRepository) filter(keep func(swap.Swap) bool) []swap.Swap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]swap.Swap, 0)
	for _, s := range r.swaps {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	return out
}

func (r *MemorySwapRepository) lockFor(id uuid.UUID) *sync.Mutex {
	v, _ := r.rowLock.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}
