package repository

import (
	"context"
	"sync"

	"skill-swap/internal/domain/swap"
	"skill-swap/internal/domain/user"

	"github.com/google/uuid"
)

// MemoryDirectory serves users and their skill listings from memory. It
// satisfies both UserRepository and UserSkillRepository.
type MemoryDirectory struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]user.User
	offered map[uuid.UUID]map[string]UserSkill
	wanted  map[uuid.UUID]map[string]struct{}
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		users:   make(map[uuid.UUID]user.User),
		offered: make(map[uuid.UUID]map[string]UserSkill),
		wanted:  make(map[uuid.UUID]map[string]struct{}),
	}
}

func (d *MemoryDirectory) PutUser(u user.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *MemoryDirectory) Offer(userID uuid.UUID, skillName string, level, years int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.offered[userID]
	if !ok {
		m = make(map[string]UserSkill)
		d.offered[userID] = m
	}
	m[swap.NormalizeSkill(skillName)] = UserSkill{
		UserID:           userID,
		SkillID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(swap.NormalizeSkill(skillName))),
		SkillName:        skillName,
		ProficiencyLevel: level,
		YearsExperience:  years,
	}
}

func (d *MemoryDirectory) Want(userID uuid.UUID, skillName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.wanted[userID]
	if !ok {
		m = make(map[string]struct{})
		d.wanted[userID] = m
	}
	m[swap.NormalizeSkill(skillName)] = struct{}{}
}

func (d *MemoryDirectory) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[id]
	return ok, nil
}

func (d *MemoryDirectory) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[uuid.UUID]user.User, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (d *MemoryDirectory) FindOffered(_ context.Context, userID uuid.UUID, skillName string) (UserSkill, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	us, ok := d.offered[userID][swap.NormalizeSkill(skillName)]
	if !ok {
		return UserSkill{}, ErrUserSkillNotFound
	}
	return us, nil
}

func (d *MemoryDirectory) Wants(_ context.Context, userID uuid.UUID, skillName string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.wanted[userID][swap.NormalizeSkill(skillName)]
	return ok, nil
}
