package common

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLPool adapts a database/sql handle to Pool. It backs the mysql, sqlite
// and lib/pq providers.
type SQLPool struct {
	db      *sql.DB
	dialect Dialect
	opts    Options
}

func OpenSQL(ctx context.Context, driverName, dsn string, dialect Dialect, opts Options) (*SQLPool, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect.Name, err)
	}

	if opts.MaxConns > 0 {
		db.SetMaxOpenConns(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		db.SetMaxIdleConns(opts.MinConns)
	}
	db.SetConnMaxIdleTime(opts.IdleTimeout)
	db.SetConnMaxLifetime(opts.MaxLifetime)

	p := &SQLPool{db: db, dialect: dialect, opts: opts}
	if err := p.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialect.Name, err)
	}
	return p, nil
}

func (p *SQLPool) Acquire(ctx context.Context) (Conn, error) {
	ctx, cancel := WithAcquireTimeout(ctx, p.opts.AcquireTimeout)
	defer cancel()

	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &sqlConn{conn: c, stmts: make(map[string]*sql.Stmt)}, nil
}

func (p *SQLPool) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *SQLPool) Dialect() Dialect {
	return p.dialect
}

func (p *SQLPool) Close() error {
	return p.db.Close()
}

type sqlConn struct {
	conn  *sql.Conn
	stmts map[string]*sql.Stmt
}

// prepare caches one statement per query text for the life of the connection.
func (c *sqlConn) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := c.stmts[query]; ok {
		return stmt, nil
	}
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	c.stmts[query] = stmt
	return stmt, nil
}

func (c *sqlConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{conn: c, tx: tx}, nil
}

func (c *sqlConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := c.conn.ExecContext(ctx, query, args...)
	return err
}

func (c *sqlConn) QueryInt64s(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (c *sqlConn) Release() {
	for _, stmt := range c.stmts {
		stmt.Close()
	}
	c.stmts = nil
	c.conn.Close()
}

type sqlTx struct {
	conn *sqlConn
	tx   *sql.Tx
}

func (t *sqlTx) ExecBatch(ctx context.Context, query string, rows [][]interface{}) error {
	prepared, err := t.conn.prepare(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	stmt := t.tx.StmtContext(ctx, prepared)
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqlTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}
