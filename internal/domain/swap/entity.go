package swap

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// Active reports whether the swap still blocks a duplicate proposal.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCompleted
}

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

type Role string

const (
	RoleProposer    Role = "proposer"
	RoleCounterpart Role = "counterpart"
)

type Rating struct {
	Value    int
	Feedback string
	RatedAt  time.Time
}

// Swap is a proposed or running barter of one skill for another.
//
// RatingOfProposer is the counterpart's evaluation of the proposer's work and
// RatingOfCounterpart is the proposer's evaluation of the counterpart's work.
type Swap struct {
	ID             uuid.UUID
	Proposer       uuid.UUID
	Counterpart    uuid.UUID
	SkillOffered   string
	SkillRequested string
	Message        string
	Status         Status

	RatingOfProposer    *Rating
	RatingOfCounterpart *Rating

	Progress   int
	MatchScore int
	Version    int64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	RespondedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	CancelledBy *uuid.UUID
}

func (s Swap) IsParticipant(userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	return s.Proposer == userID || s.Counterpart == userID
}

func (s Swap) RoleOf(userID uuid.UUID) (Role, bool) {
	switch {
	case userID == uuid.Nil:
		return "", false
	case s.Proposer == userID:
		return RoleProposer, true
	case s.Counterpart == userID:
		return RoleCounterpart, true
	default:
		return "", false
	}
}

func (s Swap) OtherParty(userID uuid.UUID) uuid.UUID {
	if s.Proposer == userID {
		return s.Counterpart
	}
	return s.Proposer
}

// RatingBy returns the rating submitted by the given role. A proposer's rating
// lives in the counterpart's slot and vice versa.
func (s Swap) RatingBy(r Role) *Rating {
	switch r {
	case RoleProposer:
		return s.RatingOfCounterpart
	case RoleCounterpart:
		return s.RatingOfProposer
	default:
		return nil
	}
}

func (s Swap) BothRated() bool {
	return s.RatingOfProposer != nil && s.RatingOfCounterpart != nil
}

// PairKey identifies the exchange independent of who proposed it: the same two
// users trading the same two skills produce the same key in either direction.
func (s Swap) PairKey() string {
	return PairKey(s.Proposer, s.Counterpart, s.SkillOffered, s.SkillRequested)
}

func PairKey(proposer, counterpart uuid.UUID, skillOffered, skillRequested string) string {
	offered := NormalizeSkill(skillOffered)
	requested := NormalizeSkill(skillRequested)

	a, b := proposer.String(), counterpart.String()
	if a > b {
		a, b = b, a
		offered, requested = requested, offered
	}
	return a + "|" + b + "|" + offered + "|" + requested
}

func NormalizeSkill(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), " ")
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (s Swap) Clone() Swap {
	out := s
	if s.RatingOfProposer != nil {
		r := *s.RatingOfProposer
		out.RatingOfProposer = &r
	}
	if s.RatingOfCounterpart != nil {
		r := *s.RatingOfCounterpart
		out.RatingOfCounterpart = &r
	}
	out.RespondedAt = cloneTime(s.RespondedAt)
	out.CompletedAt = cloneTime(s.CompletedAt)
	out.CancelledAt = cloneTime(s.CancelledAt)
	if s.CancelledBy != nil {
		id := *s.CancelledBy
		out.CancelledBy = &id
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
