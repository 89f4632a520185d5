package dto

import (
	"time"

	"skill-swap/internal/domain/swap"

	"github.com/google/uuid"
)

type PublicProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

type RatingResponse struct {
	Value    int       `json:"value"`
	Feedback string    `json:"feedback,omitempty"`
	RatedAt  time.Time `json:"rated_at"`
}

type SwapResponse struct {
	ID                uuid.UUID             `json:"id"`
	Role              string                `json:"role"`
	Status            string                `json:"status"`
	SkillOffered      string                `json:"skill_offered"`
	SkillRequested    string                `json:"skill_requested"`
	SkillIGive        string                `json:"skill_i_give"`
	SkillIGet         string                `json:"skill_i_get"`
	Message           string                `json:"message,omitempty"`
	Me                PublicProfileResponse `json:"me"`
	Other             PublicProfileResponse `json:"other"`
	HasUserRated      bool                  `json:"has_user_rated"`
	HasOtherUserRated bool                  `json:"has_other_user_rated"`
	BothRated         bool                  `json:"both_rated"`
	MyRating          *RatingResponse       `json:"my_rating"`
	OtherRating       *RatingResponse       `json:"other_rating"`
	Progress          int                   `json:"progress"`
	MatchScore        int                   `json:"match_score"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	RespondedAt       *time.Time            `json:"responded_at"`
	CompletedAt       *time.Time            `json:"completed_at"`
	CancelledAt       *time.Time            `json:"cancelled_at"`
	CancelledBy       *uuid.UUID            `json:"cancelled_by"`
}

type CompleteSwapResponse struct {
	Swap      SwapResponse `json:"swap"`
	BothRated bool         `json:"both_rated"`
}

func NewSwapResponse(v swap.View) SwapResponse {
	return SwapResponse{
		ID:                v.ID,
		Role:              string(v.Role),
		Status:            string(v.Status),
		SkillOffered:      v.SkillOffered,
		SkillRequested:    v.SkillRequested,
		SkillIGive:        v.SkillIGive,
		SkillIGet:         v.SkillIGet,
		Message:           v.Message,
		Me:                newProfileResponse(v.Me),
		Other:             newProfileResponse(v.Other),
		HasUserRated:      v.HasUserRated,
		HasOtherUserRated: v.HasOtherUserRated,
		BothRated:         v.BothRated,
		MyRating:          newRatingResponse(v.MyRating),
		OtherRating:       newRatingResponse(v.OtherRating),
		Progress:          v.Progress,
		MatchScore:        v.MatchScore,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
		RespondedAt:       v.RespondedAt,
		CompletedAt:       v.CompletedAt,
		CancelledAt:       v.CancelledAt,
		CancelledBy:       v.CancelledBy,
	}
}

func NewSwapListResponse(views []swap.View) []SwapResponse {
	out := make([]SwapResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewSwapResponse(v))
	}
	return out
}

func newProfileResponse(p swap.PublicProfile) PublicProfileResponse {
	return PublicProfileResponse{ID: p.ID, Name: p.Name, Email: p.Email, AvatarURL: p.AvatarURL}
}

func newRatingResponse(r *swap.Rating) *RatingResponse {
	if r == nil {
		return nil
	}
	return &RatingResponse{Value: r.Value, Feedback: r.Feedback, RatedAt: r.RatedAt}
}
