package swap

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PublicProfile is the only part of a user record a swap view may expose.
type PublicProfile struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarURL string
}

type View struct {
	ID             uuid.UUID
	Role           Role
	Status         Status
	SkillOffered   string
	SkillRequested string
	Message        string

	Me    PublicProfile
	Other PublicProfile

	// SkillIGive and SkillIGet restate the exchange from the viewer's side.
	SkillIGive string
	SkillIGet  string

	HasUserRated      bool
	HasOtherUserRated bool
	BothRated         bool
	MyRating          *Rating
	OtherRating       *Rating

	Progress    int
	MatchScore  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RespondedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	CancelledBy *uuid.UUID
}

// Project builds the viewer-relative view of a swap. Profiles that are missing
// from the lookup fall back to id-only profiles.
func Project(viewer uuid.UUID, s Swap, profiles map[uuid.UUID]PublicProfile) (View, error) {
	role, ok := s.RoleOf(viewer)
	if !ok {
		return View{}, fmt.Errorf("%w: viewer is not a participant", ErrAuthorization)
	}

	other := s.OtherParty(viewer)
	otherRole := RoleCounterpart
	give, get := s.SkillOffered, s.SkillRequested
	if role == RoleCounterpart {
		otherRole = RoleProposer
		give, get = s.SkillRequested, s.SkillOffered
	}

	c := s.Clone()
	mine := c.RatingBy(role)
	theirs := c.RatingBy(otherRole)

	return View{
		ID:                c.ID,
		Role:              role,
		Status:            c.Status,
		SkillOffered:      c.SkillOffered,
		SkillRequested:    c.SkillRequested,
		Message:           c.Message,
		Me:                profileOrID(profiles, viewer),
		Other:             profileOrID(profiles, other),
		SkillIGive:        give,
		SkillIGet:         get,
		HasUserRated:      mine != nil,
		HasOtherUserRated: theirs != nil,
		BothRated:         c.BothRated(),
		MyRating:          mine,
		OtherRating:       theirs,
		Progress:          c.Progress,
		MatchScore:        c.MatchScore,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		RespondedAt:       c.RespondedAt,
		CompletedAt:       c.CompletedAt,
		CancelledAt:       c.CancelledAt,
		CancelledBy:       c.CancelledBy,
	}, nil
}

// ProjectAll drops any swap the viewer is not part of.
func ProjectAll(viewer uuid.UUID, swaps []Swap, profiles map[uuid.UUID]PublicProfile) []View {
	out := make([]View, 0, len(swaps))
	for _, s := range swaps {
		v, err := Project(viewer, s, profiles)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func profileOrID(profiles map[uuid.UUID]PublicProfile, id uuid.UUID) PublicProfile {
	if p, ok := profiles[id]; ok {
		p.ID = id
		return p
	}
	return PublicProfile{ID: id}
}

// Participants returns the distinct user ids referenced by the given swaps.
func Participants(swaps []Swap) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(swaps)*2)
	out := make([]uuid.UUID, 0, len(swaps)*2)
	for _, s := range swaps {
		for _, id := range []uuid.UUID{s.Proposer, s.Counterpart} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
