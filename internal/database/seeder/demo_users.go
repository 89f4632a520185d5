package seeder

import (
	"context"
	"fmt"

	"skill-swap/internal/database"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/repository"

	"github.com/google/uuid"
)

type DemoSkill struct {
	Name  string
	Level int
	Years int
}

type DemoUser struct {
	User   user.User
	Offers []DemoSkill
	Wants  []string
}

// DemoUsers have fixed ids so tokens minted with swapctl stay valid across
// reseeds.
var DemoUsers = []DemoUser{
	{
		User:   user.User{ID: uuid.MustParse("0b7c6a52-3f1e-4d2a-9c1b-5a4e2f8d9e01"), Email: "ana@skillswap.dev", FullName: "Ana Ruiz"},
		Offers: []DemoSkill{{Name: "Logo Design", Level: 5, Years: 6}, {Name: "Illustration", Level: 4, Years: 4}},
		Wants:  []string{"Web Development", "Japanese"},
	},
	{
		User:   user.User{ID: uuid.MustParse("0b7c6a52-3f1e-4d2a-9c1b-5a4e2f8d9e02"), Email: "ben@skillswap.dev", FullName: "Ben Okafor"},
		Offers: []DemoSkill{{Name: "Web Development", Level: 4, Years: 5}, {Name: "Go", Level: 4, Years: 3}},
		Wants:  []string{"Logo Design", "Guitar"},
	},
	{
		User:   user.User{ID: uuid.MustParse("0b7c6a52-3f1e-4d2a-9c1b-5a4e2f8d9e03"), Email: "chen@skillswap.dev", FullName: "Chen Wei"},
		Offers: []DemoSkill{{Name: "Guitar", Level: 3, Years: 8}, {Name: "Japanese", Level: 5, Years: 10}},
		Wants:  []string{"Photography", "Go"},
	},
	{
		User:   user.User{ID: uuid.MustParse("0b7c6a52-3f1e-4d2a-9c1b-5a4e2f8d9e04"), Email: "dara@skillswap.dev", FullName: "Dara Singh"},
		Offers: []DemoSkill{{Name: "Photography", Level: 4, Years: 2}, {Name: "Spanish", Level: 3, Years: 1}},
		Wants:  []string{"Guitar"},
	},
}

// LoadMemory fills an in-memory directory with the demo users.
func LoadMemory(dir *repository.MemoryDirectory) {
	for _, du := range DemoUsers {
		dir.PutUser(du.User)
		for _, o := range du.Offers {
			dir.Offer(du.User.ID, o.Name, o.Level, o.Years)
		}
		for _, w := range du.Wants {
			dir.Want(du.User.ID, w)
		}
	}
}

type DemoUsersSeeder struct{}

func (DemoUsersSeeder) Name() string { return "demo_users" }

func (DemoUsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users", "id", "email", "full_name", "avatar_url"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "user_skills", "user_id", "skill_id", "proficiency_level", "years_experience"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "user_wanted_skills", "user_id", "skill_id"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, du := range DemoUsers {
		u := du.User
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, email, full_name, avatar_url) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name, updated_at = now()`,
			u.ID, u.Email, u.FullName, u.AvatarURL,
		); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Email, err)
		}

		for _, o := range du.Offers {
			affected, err := tx.Exec(ctx,
				`INSERT INTO user_skills (user_id, skill_id, proficiency_level, years_experience)
				 SELECT $1, s.id, $3, $4 FROM skills s WHERE lower(s.name) = lower($2)
				 ON CONFLICT (user_id, skill_id) DO UPDATE
				 SET proficiency_level = EXCLUDED.proficiency_level, years_experience = EXCLUDED.years_experience`,
				u.ID, o.Name, o.Level, o.Years,
			)
			if err != nil {
				return fmt.Errorf("offer %q for %s: %w", o.Name, u.Email, err)
			}
			if affected == 0 {
				return fmt.Errorf("offer %q for %s: skill missing from catalogue", o.Name, u.Email)
			}
		}

		for _, w := range du.Wants {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_wanted_skills (user_id, skill_id)
				 SELECT $1, s.id FROM skills s WHERE lower(s.name) = lower($2)
				 ON CONFLICT DO NOTHING`,
				u.ID, w,
			); err != nil {
				return fmt.Errorf("want %q for %s: %w", w, u.Email, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
