package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"skill-swap/internal/database"
	"skill-swap/internal/domain/swap"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSwapNotFound        = errors.New("swap not found")
	ErrSwapDuplicate       = errors.New("active swap already exists for this pair")
	ErrSwapVersionConflict = errors.New("swap was modified concurrently")
)

// MutateFunc edits a freshly loaded swap. Returning an error aborts the write.
type MutateFunc func(s *swap.Swap) error

type SwapRepository interface {
	Get(ctx context.Context, id uuid.UUID) (swap.Swap, error)
	Create(ctx context.Context, s swap.Swap) (swap.Swap, error)
	Save(ctx context.Context, s swap.Swap) (swap.Swap, error)
	Update(ctx context.Context, id uuid.UUID, fn MutateFunc) (swap.Swap, error)
	FindActiveForUser(ctx context.Context, userID uuid.UUID) ([]swap.Swap, error)
	FindCompletedForUser(ctx context.Context, userID uuid.UUID) ([]swap.Swap, error)
	FindConflicting(ctx context.Context, userA, userB uuid.UUID, skillOffered, skillRequested string) (swap.Swap, bool, error)
}

const swapColumns = `id, proposer_id, counterpart_id, skill_offered, skill_requested, message, status,
	rating_of_proposer, feedback_of_proposer, rated_proposer_at,
	rating_of_counterpart, feedback_of_counterpart, rated_counterpart_at,
	progress, match_score, version,
	created_at, updated_at, responded_at, completed_at, cancelled_at, cancelled_by`

type PostgresSwapRepository struct {
	db       database.DB
	maxTries uint
}

func NewPostgresSwapRepository(db database.DB) *PostgresSwapRepository {
	return &PostgresSwapRepository{db: db, maxTries: 3}
}

// WithMaxTries bounds attempts on transient failures; 0 keeps the default.
func (r *PostgresSwapRepository) WithMaxTries(n uint) *PostgresSwapRepository {
	if n > 0 {
		r.maxTries = n
	}
	return r
}

func (r *PostgresSwapRepository) Get(ctx context.Context, id uuid.UUID) (swap.Swap, error) {
	return withRetry(ctx, r.maxTries, func() (swap.Swap, error) {
		row := r.db.QueryRow(ctx, `SELECT `+swapColumns+` FROM swaps WHERE id = $1`, id)
		s, err := scanSwap(row)
		if err != nil {
			if isNoRows(err) {
				return swap.Swap{}, ErrSwapNotFound
			}
			return swap.Swap{}, err
		}
		return s, nil
	})
}

func (r *PostgresSwapRepository) Create(ctx context.Context, s swap.Swap) (swap.Swap, error) {
	if err := s.CheckInvariants(); err != nil {
		return swap.Swap{}, err
	}
	s.Version = 1

	return withRetry(ctx, r.maxTries, func() (swap.Swap, error) {
		args := append([]any{s.PairKey()}, swapArgs(s)...)
		_, err := r.db.Exec(ctx,
			`INSERT INTO swaps (pair_key, `+swapColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
			args...,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return swap.Swap{}, ErrSwapDuplicate
			}
			return swap.Swap{}, err
		}
		return s, nil
	})
}

// Save writes s only if the stored version still equals s.Version.
func (r *PostgresSwapRepository) Save(ctx context.Context, s swap.Swap) (swap.Swap, error) {
	if err := s.CheckInvariants(); err != nil {
		return swap.Swap{}, err
	}

	return withRetry(ctx, r.maxTries, func() (swap.Swap, error) {
		affected, err := r.db.Exec(ctx, updateSwapSQL, updateArgs(s)...)
		if err != nil {
			return swap.Swap{}, err
		}
		if affected == 0 {
			var exists bool
			if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM swaps WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
				return swap.Swap{}, err
			}
			if !exists {
				return swap.Swap{}, ErrSwapNotFound
			}
			return swap.Swap{}, ErrSwapVersionConflict
		}
		out := s.Clone()
		out.Version++
		return out, nil
	})
}

// Update locks the row, applies fn and writes the result in one transaction.
func (r *PostgresSwapRepository) Update(ctx context.Context, id uuid.UUID, fn MutateFunc) (swap.Swap, error) {
	return withRetry(ctx, r.maxTries, func() (swap.Swap, error) {
		return r.updateOnce(ctx, id, fn)
	})
}

func (r *PostgresSwapRepository) updateOnce(ctx context.Context, id uuid.UUID, fn MutateFunc) (swap.Swap, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return swap.Swap{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := scanSwap(tx.QueryRow(ctx, `SELECT `+swapColumns+` FROM swaps WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if isNoRows(err) {
			return swap.Swap{}, ErrSwapNotFound
		}
		return swap.Swap{}, err
	}

	next := cur.Clone()
	if err := fn(&next); err != nil {
		return swap.Swap{}, err
	}
	if err := next.CheckInvariants(); err != nil {
		return swap.Swap{}, err
	}
	next.Version = cur.Version

	affected, err := tx.Exec(ctx, updateSwapSQL, updateArgs(next)...)
	if err != nil {
		return swap.Swap{}, err
	}
	if affected == 0 {
		return swap.Swap{}, ErrSwapVersionConflict
	}
	if err := tx.Commit(ctx); err != nil {
		return swap.Swap{}, err
	}

	next.Version++
	return next, nil
}

func (r *PostgresSwapRepository) FindActiveForUser(ctx context.Context, userID uuid.UUID) ([]swap.Swap, error) {
	return r.list(ctx,
		`SELECT `+swapColumns+` FROM swaps
		 WHERE (proposer_id = $1 OR counterpart_id = $1)
		   AND status IN ('pending', 'accepted')
		 ORDER BY updated_at DESC, id ASC`,
		userID,
	)
}

func (r *PostgresSwapRepository) FindCompletedForUser(ctx context.Context, userID uuid.UUID) ([]swap.Swap, error) {
	return r.list(ctx,
		`SELECT `+swapColumns+` FROM swaps
		 WHERE (proposer_id = $1 OR counterpart_id = $1)
		   AND status = 'completed'
		 ORDER BY completed_at DESC, id ASC`,
		userID,
	)
}

func (r *PostgresSwapRepository) FindConflicting(ctx context.Context, userA, userB uuid.UUID, skillOffered, skillRequested string) (swap.Swap, bool, error) {
	key := swap.PairKey(userA, userB, skillOffered, skillRequested)
	s, err := withRetry(ctx, r.maxTries, func() (swap.Swap, error) {
		return scanSwap(r.db.QueryRow(ctx,
			`SELECT `+swapColumns+` FROM swaps
			 WHERE pair_key = $1 AND status IN ('pending', 'accepted')
			 LIMIT 1`,
			key,
		))
	})
	if err != nil {
		if isNoRows(err) {
			return swap.Swap{}, false, nil
		}
		return swap.Swap{}, false, err
	}
	return s, true, nil
}

func (r *PostgresSwapRepository) list(ctx context.Context, query string, args ...any) ([]swap.Swap, error) {
	return withRetry(ctx, r.maxTries, func() ([]swap.Swap, error) {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		out := make([]swap.Swap, 0)
		for rows.Next() {
			s, err := scanSwap(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return out, nil
	})
}

const updateSwapSQL = `UPDATE swaps SET
	status = $3, message = $4,
	rating_of_proposer = $5, feedback_of_proposer = $6, rated_proposer_at = $7,
	rating_of_counterpart = $8, feedback_of_counterpart = $9, rated_counterpart_at = $10,
	progress = $11, match_score = $12,
	updated_at = $13, responded_at = $14, completed_at = $15, cancelled_at = $16, cancelled_by = $17,
	version = version + 1
 WHERE id = $1 AND version = $2`

func updateArgs(s swap.Swap) []any {
	pv, pf, pt := ratingArgs(s.RatingOfProposer)
	cv, cf, ct := ratingArgs(s.RatingOfCounterpart)
	return []any{
		s.ID, s.Version,
		string(s.Status), s.Message,
		pv, pf, pt,
		cv, cf, ct,
		s.Progress, s.MatchScore,
		s.UpdatedAt, s.RespondedAt, s.CompletedAt, s.CancelledAt, s.CancelledBy,
	}
}

func swapArgs(s swap.Swap) []any {
	pv, pf, pt := ratingArgs(s.RatingOfProposer)
	cv, cf, ct := ratingArgs(s.RatingOfCounterpart)
	return []any{
		s.ID, s.Proposer, s.Counterpart, s.SkillOffered, s.SkillRequested, s.Message, string(s.Status),
		pv, pf, pt,
		cv, cf, ct,
		s.Progress, s.MatchScore, s.Version,
		s.CreatedAt, s.UpdatedAt, s.RespondedAt, s.CompletedAt, s.CancelledAt, s.CancelledBy,
	}
}

func ratingArgs(r *swap.Rating) (*int, *string, *time.Time) {
	if r == nil {
		return nil, nil, nil
	}
	v, f, t := r.Value, r.Feedback, r.RatedAt
	return &v, &f, &t
}

func scanSwap(row database.Row) (swap.Swap, error) {
	var (
		s                        swap.Swap
		status                   string
		pVal, cVal               *int
		pFeedback, cFeedback     *string
		pAt, cAt                 *time.Time
		respondedAt, completedAt *time.Time
		cancelledAt              *time.Time
		cancelledBy              *uuid.UUID
	)
	if err := row.Scan(
		&s.ID, &s.Proposer, &s.Counterpart, &s.SkillOffered, &s.SkillRequested, &s.Message, &status,
		&pVal, &pFeedback, &pAt,
		&cVal, &cFeedback, &cAt,
		&s.Progress, &s.MatchScore, &s.Version,
		&s.CreatedAt, &s.UpdatedAt, &respondedAt, &completedAt, &cancelledAt, &cancelledBy,
	); err != nil {
		return swap.Swap{}, err
	}

	s.Status = swap.Status(status)
	s.RatingOfProposer = buildRating(pVal, pFeedback, pAt)
	s.RatingOfCounterpart = buildRating(cVal, cFeedback, cAt)
	s.RespondedAt = utcPtr(respondedAt)
	s.CompletedAt = utcPtr(completedAt)
	s.CancelledAt = utcPtr(cancelledAt)
	s.CancelledBy = cancelledBy
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func buildRating(v *int, feedback *string, at *time.Time) *swap.Rating {
	if v == nil {
		return nil
	}
	r := &swap.Rating{Value: *v}
	if feedback != nil {
		r.Feedback = *feedback
	}
	if at != nil {
		r.RatedAt = at.UTC()
	}
	return r
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

// isTransient reports errors worth another attempt: dropped connections and
// timeouts that pgconn marks as safe to retry.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

func withRetry[T any](ctx context.Context, tries uint, op func() (T, error)) (T, error) {
	if tries == 0 {
		tries = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !isTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
}
