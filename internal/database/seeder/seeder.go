package seeder

import (
	"context"

	"skill-swap/internal/database"
)

// Seeder loads reference or demo rows. Every seeder must be safe to rerun.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
