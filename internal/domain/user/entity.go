package user

import (
	"time"

	"skill-swap/internal/domain/swap"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicProfile strips the user down to what the other side of a swap may see.
func (u User) PublicProfile() swap.PublicProfile {
	return swap.PublicProfile{
		ID:        u.ID,
		Name:      u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
