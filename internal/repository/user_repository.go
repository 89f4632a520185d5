package repository

import (
	"context"

	"skill-swap/internal/database"
	"skill-swap/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error)
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
	out := make(map[uuid.UUID]user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, email, full_name, avatar_url, created_at, updated_at
		 FROM users
		 WHERE id = ANY($1::uuid[])`,
		raw,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
