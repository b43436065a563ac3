package postgres

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/medload/internal/database/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

type Adapter struct {
	pool *pgxpool.Pool
	opts common.Options
}

// Connect builds a pgx pool. Statements are cached per connection so each
// worker's INSERT is parsed once.
func Connect(ctx context.Context, url string, opts common.Options) (*Adapter, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	if opts.StatementCache > 0 {
		config.ConnConfig.StatementCacheCapacity = opts.StatementCache
	}
	if opts.MaxConns > 0 {
		config.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		config.MinConns = int32(opts.MinConns)
	}
	if opts.IdleTimeout > 0 {
		config.MaxConnIdleTime = opts.IdleTimeout
	}
	if opts.MaxLifetime > 0 {
		config.MaxConnLifetime = opts.MaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	a := &Adapter{pool: pool, opts: opts}
	if err := a.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return a, nil
}

// ConnectSQL opens postgres through database/sql and lib/pq instead of the
// native pgx pool.
func ConnectSQL(ctx context.Context, url string, opts common.Options) (*common.SQLPool, error) {
	return common.OpenSQL(ctx, "postgres", url, common.PostgresDialect, opts)
}

func (p *Adapter) Acquire(ctx context.Context) (common.Conn, error) {
	ctx, cancel := common.WithAcquireTimeout(ctx, p.opts.AcquireTimeout)
	defer cancel()

	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &conn{c: c}, nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Adapter) Dialect() common.Dialect {
	return common.PostgresDialect
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

type conn struct {
	c *pgxpool.Conn
}

func (c *conn) Begin(ctx context.Context) (common.Tx, error) {
	t, err := c.c.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &tx{t: t}, nil
}

func (c *conn) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := c.c.Exec(ctx, query, args...)
	return err
}

func (c *conn) QueryInt64s(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := c.c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (c *conn) Release() {
	c.c.Release()
}

type tx struct {
	t pgx.Tx
}

// ExecBatch queues every row and sends them in one round trip.
func (t *tx) ExecBatch(ctx context.Context, query string, rows [][]interface{}) error {
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row...)
	}
	return t.t.SendBatch(ctx, batch).Close()
}

func (t *tx) Commit(ctx context.Context) error {
	return t.t.Commit(ctx)
}

func (t *tx) Rollback(ctx context.Context) error {
	return t.t.Rollback(ctx)
}
