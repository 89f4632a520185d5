package swap

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5

	MaxMessageLength  = 1000
	MaxFeedbackLength = 2000
	MaxSkillLength    = 120
)

type ProposeInput struct {
	Proposer       uuid.UUID
	Counterpart    uuid.UUID
	SkillOffered   string
	SkillRequested string
	Message        string
}

// NewPending validates a proposal and builds the pending swap. Ownership of the
// skills and the duplicate guard are checked by the caller against collaborators.
func NewPending(in ProposeInput, id uuid.UUID, now time.Time) (Swap, error) {
	if in.Proposer == uuid.Nil || in.Counterpart == uuid.Nil {
		return Swap{}, fmt.Errorf("%w: proposer and counterpart are required", ErrValidation)
	}
	if in.Proposer == in.Counterpart {
		return Swap{}, fmt.Errorf("%w: cannot propose a swap to yourself", ErrValidation)
	}

	offered := strings.TrimSpace(in.SkillOffered)
	requested := strings.TrimSpace(in.SkillRequested)
	if offered == "" || requested == "" {
		return Swap{}, fmt.Errorf("%w: skill_offered and skill_requested are required", ErrValidation)
	}
	if utf8.RuneCountInString(offered) > MaxSkillLength || utf8.RuneCountInString(requested) > MaxSkillLength {
		return Swap{}, fmt.Errorf("%w: skill name too long", ErrValidation)
	}

	msg := strings.TrimSpace(in.Message)
	if utf8.RuneCountInString(msg) > MaxMessageLength {
		return Swap{}, fmt.Errorf("%w: message too long", ErrValidation)
	}

	now = now.UTC()
	return Swap{
		ID:             id,
		Proposer:       in.Proposer,
		Counterpart:    in.Counterpart,
		SkillOffered:   offered,
		SkillRequested: requested,
		Message:        msg,
		Status:         StatusPending,
		Progress:       0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func ParseDecision(raw string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(raw))) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionReject:
		return DecisionReject, nil
	default:
		return "", fmt.Errorf("%w: decision must be accept or reject", ErrValidation)
	}
}

// Respond applies the counterpart's decision to a pending swap.
func (s *Swap) Respond(actor uuid.UUID, d Decision, now time.Time) error {
	if actor != s.Counterpart {
		return fmt.Errorf("%w: only the counterpart can respond to a swap", ErrAuthorization)
	}
	if s.Status != StatusPending {
		return fmt.Errorf("%w: swap is %s, expected pending", ErrInvalidState, s.Status)
	}

	switch d {
	case DecisionAccept:
		s.Status = StatusAccepted
	case DecisionReject:
		s.Status = StatusRejected
	default:
		return fmt.Errorf("%w: decision must be accept or reject", ErrValidation)
	}

	t := now.UTC()
	s.RespondedAt = &t
	s.UpdatedAt = t
	return nil
}

func (s *Swap) Cancel(actor uuid.UUID, now time.Time) error {
	if !s.IsParticipant(actor) {
		return fmt.Errorf("%w: only participants can cancel a swap", ErrAuthorization)
	}
	if !s.Status.Active() {
		return fmt.Errorf("%w: swap is %s and can no longer be cancelled", ErrInvalidState, s.Status)
	}

	t := now.UTC()
	by := actor
	s.Status = StatusCancelled
	s.CancelledAt = &t
	s.CancelledBy = &by
	s.UpdatedAt = t
	return nil
}

func ValidateRating(value int, feedback string) error {
	if value < MinRating || value > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	if utf8.RuneCountInString(feedback) > MaxFeedbackLength {
		return fmt.Errorf("%w: feedback too long", ErrValidation)
	}
	return nil
}

// Rate records the actor's evaluation of the other party and completes the swap
// once both evaluations are present. It reports whether this call completed it.
func (s *Swap) Rate(actor uuid.UUID, value int, feedback string, now time.Time) (bool, error) {
	if err := ValidateRating(value, feedback); err != nil {
		return false, err
	}

	role, ok := s.RoleOf(actor)
	if !ok {
		return false, fmt.Errorf("%w: only participants can complete a swap", ErrAuthorization)
	}
	if s.Status != StatusAccepted {
		return false, fmt.Errorf("%w: swap must be accepted before completion", ErrInvalidState)
	}

	t := now.UTC()
	r := &Rating{Value: value, Feedback: strings.TrimSpace(feedback), RatedAt: t}

	// The proposer evaluates the counterpart's work and the counterpart evaluates
	// the proposer's work, so each submission lands in the other party's slot.
	switch role {
	case RoleProposer:
		if s.RatingOfCounterpart != nil {
			return false, fmt.Errorf("%w: you have already rated this swap", ErrAlreadyRated)
		}
		s.RatingOfCounterpart = r
	case RoleCounterpart:
		if s.RatingOfProposer != nil {
			return false, fmt.Errorf("%w: you have already rated this swap", ErrAlreadyRated)
		}
		s.RatingOfProposer = r
	}
	s.UpdatedAt = t

	if !s.BothRated() {
		return false, nil
	}

	s.Status = StatusCompleted
	s.Progress = 100
	if s.CompletedAt == nil {
		s.CompletedAt = &t
	}
	return true, nil
}

func (s *Swap) SetProgress(actor uuid.UUID, progress int, now time.Time) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrValidation)
	}
	if !s.IsParticipant(actor) {
		return fmt.Errorf("%w: only participants can update progress", ErrAuthorization)
	}
	if s.Status != StatusAccepted {
		return fmt.Errorf("%w: progress can only change while the swap is accepted", ErrInvalidState)
	}
	s.Progress = progress
	s.UpdatedAt = now.UTC()
	return nil
}

// CheckInvariants reports a broken swap record. Stores call it before writing.
func (s Swap) CheckInvariants() error {
	if !s.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidState, s.Status)
	}
	if s.Proposer == s.Counterpart {
		return fmt.Errorf("%w: proposer equals counterpart", ErrInvalidState)
	}
	switch s.Status {
	case StatusCompleted:
		if !s.BothRated() || s.CompletedAt == nil {
			return fmt.Errorf("%w: completed swap without both ratings", ErrInvalidState)
		}
	case StatusAccepted, StatusCancelled:
		// a swap cancelled mid-rating keeps the single rating it collected
		if s.BothRated() {
			return fmt.Errorf("%w: %s swap carries both ratings", ErrInvalidState, s.Status)
		}
	default:
		if s.RatingOfProposer != nil || s.RatingOfCounterpart != nil {
			return fmt.Errorf("%w: %s swap carries a rating", ErrInvalidState, s.Status)
		}
	}
	return nil
}
