package swap

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newAccepted(t *testing.T) Swap {
	t.Helper()
	s, err := NewPending(ProposeInput{
		Proposer:       uuid.New(),
		Counterpart:    uuid.New(),
		SkillOffered:   "Logo Design",
		SkillRequested: "Web Development",
	}, uuid.New(), t0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := s.Respond(s.Counterpart, DecisionAccept, t0.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return s
}

func TestNewPending_Validation(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	cases := []struct {
		name string
		in   ProposeInput
	}{
		{"self", ProposeInput{Proposer: a, Counterpart: a, SkillOffered: "Go", SkillRequested: "Rust"}},
		{"nil counterpart", ProposeInput{Proposer: a, SkillOffered: "Go", SkillRequested: "Rust"}},
		{"blank offered", ProposeInput{Proposer: a, Counterpart: b, SkillOffered: "   ", SkillRequested: "Rust"}},
		{"blank requested", ProposeInput{Proposer: a, Counterpart: b, SkillOffered: "Go"}},
		{"long message", ProposeInput{Proposer: a, Counterpart: b, SkillOffered: "Go", SkillRequested: "Rust", Message: string(make([]rune, MaxMessageLength+1))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPending(tc.in, uuid.New(), t0)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNewPending_Success(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	s, err := NewPending(ProposeInput{Proposer: a, Counterpart: b, SkillOffered: "  Go ", SkillRequested: "Rust", Message: " hi "}, uuid.New(), t0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Status != StatusPending {
		t.Fatalf("expected pending, got %s", s.Status)
	}
	if s.SkillOffered != "Go" || s.Message != "hi" {
		t.Fatalf("expected trimmed fields, got %q %q", s.SkillOffered, s.Message)
	}
	if s.RatingOfProposer != nil || s.RatingOfCounterpart != nil {
		t.Fatalf("expected no ratings")
	}
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("unexpected invariant err: %v", err)
	}
}

func TestRespond_ByProposerIsForbidden(t *testing.T) {
	s, _ := NewPending(ProposeInput{Proposer: uuid.New(), Counterpart: uuid.New(), SkillOffered: "Go", SkillRequested: "Rust"}, uuid.New(), t0)
	err := s.Respond(s.Proposer, DecisionAccept, t0)
	if !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
	if s.Status != StatusPending {
		t.Fatalf("expected status unchanged, got %s", s.Status)
	}
}

func TestRespond_Reject(t *testing.T) {
	s, _ := NewPending(ProposeInput{Proposer: uuid.New(), Counterpart: uuid.New(), SkillOffered: "Go", SkillRequested: "Rust"}, uuid.New(), t0)
	if err := s.Respond(s.Counterpart, DecisionReject, t0.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Status != StatusRejected || s.RespondedAt == nil {
		t.Fatalf("expected rejected with respondedAt, got %s %v", s.Status, s.RespondedAt)
	}
	if err := s.Respond(s.Counterpart, DecisionAccept, t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestParseDecision(t *testing.T) {
	if d, err := ParseDecision(" Accept "); err != nil || d != DecisionAccept {
		t.Fatalf("expected accept, got %q %v", d, err)
	}
	if _, err := ParseDecision("maybe"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCancel_Twice(t *testing.T) {
	s, _ := NewPending(ProposeInput{Proposer: uuid.New(), Counterpart: uuid.New(), SkillOffered: "Go", SkillRequested: "Rust"}, uuid.New(), t0)
	if err := s.Cancel(s.Proposer, t0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.CancelledBy == nil || *s.CancelledBy != s.Proposer {
		t.Fatalf("expected cancelledBy proposer")
	}
	if err := s.Cancel(s.Proposer, t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if err := s.Respond(s.Counterpart, DecisionAccept, t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on respond, got %v", err)
	}
	if _, err := s.Rate(s.Counterpart, 4, "", t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on rate, got %v", err)
	}
}

func TestCancel_ByOutsider(t *testing.T) {
	s := newAccepted(t)
	if err := s.Cancel(uuid.New(), t0); !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
}

func TestRate_OnPending(t *testing.T) {
	s, _ := NewPending(ProposeInput{Proposer: uuid.New(), Counterpart: uuid.New(), SkillOffered: "Go", SkillRequested: "Rust"}, uuid.New(), t0)
	_, err := s.Rate(s.Proposer, 5, "", t0)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestRate_OutOfRange(t *testing.T) {
	s := newAccepted(t)
	for _, v := range []int{0, 6, -1} {
		if _, err := s.Rate(s.Proposer, v, "", t0); !errors.Is(err, ErrValidation) {
			t.Fatalf("rating %d: expected ErrValidation, got %v", v, err)
		}
	}
}

func TestRate_CrossAttributionAndCompletion(t *testing.T) {
	s := newAccepted(t)

	done, err := s.Rate(s.Proposer, 5, "great site", t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if done {
		t.Fatalf("expected not completed after one rating")
	}
	if s.RatingOfCounterpart == nil || s.RatingOfCounterpart.Value != 5 {
		t.Fatalf("expected proposer rating in counterpart slot")
	}
	if s.RatingOfProposer != nil {
		t.Fatalf("expected proposer slot empty")
	}

	_, err = s.Rate(s.Proposer, 1, "", t0.Add(2*time.Hour))
	if !errors.Is(err, ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got %v", err)
	}
	if s.RatingOfCounterpart.Value != 5 {
		t.Fatalf("expected first rating preserved, got %d", s.RatingOfCounterpart.Value)
	}

	doneAt := t0.Add(3 * time.Hour)
	done, err = s.Rate(s.Counterpart, 4, "nice logo", doneAt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !done {
		t.Fatalf("expected completion")
	}
	if s.Status != StatusCompleted || s.Progress != 100 {
		t.Fatalf("expected completed at 100, got %s %d", s.Status, s.Progress)
	}
	if s.RatingOfProposer == nil || s.RatingOfProposer.Value != 4 {
		t.Fatalf("expected counterpart rating in proposer slot")
	}
	if s.CompletedAt == nil || !s.CompletedAt.Equal(doneAt) {
		t.Fatalf("expected completedAt %v, got %v", doneAt, s.CompletedAt)
	}
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("unexpected invariant err: %v", err)
	}

	if _, err := s.Rate(s.Counterpart, 3, "", t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after completion, got %v", err)
	}
}

func TestSetProgress(t *testing.T) {
	s := newAccepted(t)
	if err := s.SetProgress(s.Proposer, 101, t0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := s.SetProgress(uuid.New(), 50, t0); !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
	if err := s.SetProgress(s.Counterpart, 40, t0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Progress != 40 {
		t.Fatalf("expected progress 40, got %d", s.Progress)
	}
}

func TestCheckInvariants_Broken(t *testing.T) {
	s := newAccepted(t)
	s.Status = StatusCompleted
	if err := s.CheckInvariants(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	p, _ := NewPending(ProposeInput{Proposer: uuid.New(), Counterpart: uuid.New(), SkillOffered: "Go", SkillRequested: "Rust"}, uuid.New(), t0)
	p.RatingOfProposer = &Rating{Value: 3}
	if err := p.CheckInvariants(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestPairKey_Symmetric(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	k1 := PairKey(a, b, "Logo Design", "Web Development")
	k2 := PairKey(b, a, "web  development", "logo design")
	if k1 != k2 {
		t.Fatalf("expected same key, got %q vs %q", k1, k2)
	}
	if k3 := PairKey(b, a, "Logo Design", "Web Development"); k3 == k1 {
		t.Fatalf("expected reversed exchange to differ")
	}
}

func TestClone_NoAliasing(t *testing.T) {
	s := newAccepted(t)
	_, _ = s.Rate(s.Proposer, 5, "", t0)
	c := s.Clone()
	c.RatingOfCounterpart.Value = 1
	*c.RespondedAt = t0.Add(48 * time.Hour)
	if s.RatingOfCounterpart.Value != 5 {
		t.Fatalf("clone aliased rating")
	}
	if s.RespondedAt.Equal(*c.RespondedAt) {
		t.Fatalf("clone aliased respondedAt")
	}
}
