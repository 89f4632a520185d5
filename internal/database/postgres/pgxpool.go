package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"skill-swap/internal/config"
	"skill-swap/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

var errNilDB = errors.New("nil db")

// querier is the statement surface shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// session adapts a querier to the database package interfaces.
type session struct {
	q querier
}

func (s session) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if s.q == nil {
		return 0, errNilDB
	}
	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s session) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if s.q == nil {
		return nil, errNilDB
	}
	r, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s session) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if s.q == nil {
		return nilRow{}
	}
	return s.q.QueryRow(ctx, query, args...)
}

type Option func(*connectOptions)

type connectOptions struct {
	logger *log.Logger
}

// WithQueryLogger logs statements slower than the configured
// DB_SLOW_QUERY_THRESHOLD.
func WithQueryLogger(logger *log.Logger) Option {
	return func(o *connectOptions) { o.logger = logger }
}

type Pool struct {
	session
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// Connect opens the pool and verifies it with a ping. The returned *Pool also
// exposes the pool as *sql.DB for the migration runner.
func Connect(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Pool, error) {
	var o connectOptions
	for _, opt := range opts {
		opt(&o)
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	applyPoolConfig(pcfg, cfg)
	if o.logger != nil && cfg.SlowQueryThreshold > 0 {
		pcfg.ConnConfig.Tracer = &slowQueryTracer{logger: o.logger, threshold: cfg.SlowQueryThreshold}
	}

	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping %s:%s: %w", cfg.DBHost, cfg.DBPort, err)
	}

	return &Pool{session: session{q: p}, pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

func applyPoolConfig(pcfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}
}

func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errNilDB
	}
	return p.pool.Ping(ctx)
}

func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	if p.sqlDB != nil {
		_ = p.sqlDB.Close()
	}
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Pool) Begin(ctx context.Context) (database.Tx, error) {
	if p == nil || p.pool == nil {
		return nil, errNilDB
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{session: session{q: tx}, tx: tx}, nil
}

func (p *Pool) SQLDB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.sqlDB
}

// Stats reports pool occupancy for the health endpoint.
func (p *Pool) Stats() database.PoolStats {
	if p == nil || p.pool == nil {
		return database.PoolStats{}
	}
	st := p.pool.Stat()
	return database.PoolStats{
		TotalConns:    st.TotalConns(),
		IdleConns:     st.IdleConns(),
		AcquiredConns: st.AcquiredConns(),
		MaxConns:      st.MaxConns(),
	}
}

var _ database.DB = (*Pool)(nil)

type pgxTx struct {
	session
	tx pgx.Tx
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

var _ database.Tx = (*pgxTx)(nil)

type nilRow struct{}

func (nilRow) Scan(_ ...any) error {
	return errNilDB
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// slowQueryTracer implements pgx.QueryTracer.
type slowQueryTracer struct {
	logger    *log.Logger
	threshold time.Duration
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: time.Now()})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := time.Since(start.at)
	if elapsed < t.threshold {
		return
	}
	t.logger.Printf("[DB] slow query duration=%s rows=%d err=%v sql=%q",
		elapsed.Round(time.Millisecond), data.CommandTag.RowsAffected(), data.Err, compactSQL(start.sql))
}

func compactSQL(q string) string {
	const limit = 160
	out := make([]byte, 0, len(q))
	space := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			space = len(out) > 0
			continue
		}
		if space {
			out = append(out, ' ')
			space = false
		}
		out = append(out, c)
	}
	if len(out) > limit {
		return string(out[:limit]) + "..."
	}
	return string(out)
}
