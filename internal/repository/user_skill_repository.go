package repository

import (
	"context"
	"errors"

	"skill-swap/internal/database"
	"skill-swap/internal/domain/swap"

	"github.com/google/uuid"
)

var ErrUserSkillNotFound = errors.New("skill not found")

type UserSkill struct {
	UserID           uuid.UUID
	SkillID          uuid.UUID
	SkillName        string
	ProficiencyLevel int
	YearsExperience  int
}

// UserSkillRepository is the read-only view of what users offer and want.
// Skill names match case-insensitively with whitespace collapsed.
type UserSkillRepository interface {
	FindOffered(ctx context.Context, userID uuid.UUID, skillName string) (UserSkill, error)
	Wants(ctx context.Context, userID uuid.UUID, skillName string) (bool, error)
}

type PostgresUserSkillRepository struct {
	db database.DB
}

func NewPostgresUserSkillRepository(db database.DB) *PostgresUserSkillRepository {
	return &PostgresUserSkillRepository{db: db}
}

const normalizedSkillName = `regexp_replace(lower(btrim(s.name)), '\s+', ' ', 'g')`

func (r *PostgresUserSkillRepository) FindOffered(ctx context.Context, userID uuid.UUID, skillName string) (UserSkill, error) {
	row := r.db.QueryRow(ctx,
		`SELECT us.user_id, us.skill_id, s.name, COALESCE(us.proficiency_level, 0), COALESCE(us.years_experience, 0)
		 FROM user_skills us
		 JOIN skills s ON s.id = us.skill_id
		 WHERE us.user_id = $1 AND `+normalizedSkillName+` = $2
		 LIMIT 1`,
		userID, swap.NormalizeSkill(skillName),
	)

	var us UserSkill
	if err := row.Scan(&us.UserID, &us.SkillID, &us.SkillName, &us.ProficiencyLevel, &us.YearsExperience); err != nil {
		if isNoRows(err) {
			return UserSkill{}, ErrUserSkillNotFound
		}
		return UserSkill{}, err
	}
	return us, nil
}

func (r *PostgresUserSkillRepository) Wants(ctx context.Context, userID uuid.UUID, skillName string) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM user_wanted_skills w
			JOIN skills s ON s.id = w.skill_id
			WHERE w.user_id = $1 AND `+normalizedSkillName+` = $2
		)`,
		userID, swap.NormalizeSkill(skillName),
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
