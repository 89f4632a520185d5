package seeder

import (
	"context"
	"errors"
	"fmt"
	"log"

	"skill-swap/internal/database"
)

var errNilDB = errors.New("nil db")

type Runner struct {
	Seeders []Seeder
	Logger  *log.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errNilDB
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		if r.Logger != nil {
			r.Logger.Printf("[Seeder] applied seeder=%s", s.Name())
		}
	}
	return nil
}
