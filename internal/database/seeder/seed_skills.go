package seeder

import (
	"context"
	"fmt"

	"skill-swap/internal/database"
)

type catalogueSkill struct {
	Name     string
	Category string
}

// Catalogue is the shared skill vocabulary users pick offers and wants from.
var Catalogue = []catalogueSkill{
	{Name: "Logo Design", Category: "Design"},
	{Name: "UI Design", Category: "Design"},
	{Name: "Illustration", Category: "Design"},
	{Name: "Web Development", Category: "Programming"},
	{Name: "Go", Category: "Programming"},
	{Name: "Python", Category: "Programming"},
	{Name: "PostgreSQL", Category: "Programming"},
	{Name: "Photography", Category: "Media"},
	{Name: "Video Editing", Category: "Media"},
	{Name: "Copywriting", Category: "Writing"},
	{Name: "Spanish", Category: "Languages"},
	{Name: "Japanese", Category: "Languages"},
	{Name: "Guitar", Category: "Music"},
	{Name: "Piano", Category: "Music"},
	{Name: "Public Speaking", Category: "Business"},
}

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

func (SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "skills", "id", "name", "category", "created_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, it := range Catalogue {
		// No conflict target: both the name and lower(name) indexes must absorb reruns.
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO skills (id, name, category) VALUES (gen_random_uuid(), $1, $2) ON CONFLICT DO NOTHING`,
			it.Name,
			it.Category,
		); err != nil {
			return fmt.Errorf("insert skill %q: %w", it.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
