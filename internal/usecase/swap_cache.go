package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SwapCache holds per-user list projections. Entries are keyed by the user's
// list generation; a mutation bumps the generation instead of deleting entries,
// so a list loaded before the mutation can never be served after it.
type SwapCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Generation(ctx context.Context, key string) (int64, error)
	BumpGeneration(ctx context.Context, keys ...string) error
}

type swapListKind string

const (
	swapListActive    swapListKind = "active"
	swapListCompleted swapListKind = "completed"
)

func SwapListGenerationKey(userID uuid.UUID) string {
	return "swaps:gen:" + userID.String()
}

func ActiveSwapsCacheKey(userID uuid.UUID, gen int64) string {
	return swapListCacheKey(swapListActive, userID, gen)
}

func CompletedSwapsCacheKey(userID uuid.UUID, gen int64) string {
	return swapListCacheKey(swapListCompleted, userID, gen)
}

func swapListCacheKey(kind swapListKind, userID uuid.UUID, gen int64) string {
	return fmt.Sprintf("swaps:%s:%s:%d", kind, userID, gen)
}
