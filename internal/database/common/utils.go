package common

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Masterminds/squirrel"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Options are the pool settings every provider understands. Zero values
// leave the driver default in place.
type Options struct {
	MaxConns       int
	MinConns       int
	IdleTimeout    time.Duration
	AcquireTimeout time.Duration
	MaxLifetime    time.Duration
	StatementCache int
}

// Pool hands out connections and bounds how many are open at once.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
	Dialect() Dialect
	Close() error
}

// Conn is a single checked-out connection. It is owned by one goroutine
// until Release is called.
type Conn interface {
	Begin(ctx context.Context) (Tx, error)
	Exec(ctx context.Context, query string, args ...interface{}) error
	QueryInt64s(ctx context.Context, query string, args ...interface{}) ([]int64, error)
	Release()
}

// Tx executes a group of rows against one prepared statement.
type Tx interface {
	ExecBatch(ctx context.Context, query string, rows [][]interface{}) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Dialect carries the per-provider SQL differences.
type Dialect struct {
	Name        string
	Placeholder squirrel.PlaceholderFormat
}

var (
	PostgresDialect = Dialect{Name: "postgresql", Placeholder: squirrel.Dollar}
	MySQLDialect    = Dialect{Name: "mysql", Placeholder: squirrel.Question}
	SQLiteDialect   = Dialect{Name: "sqlite", Placeholder: squirrel.Question}
)

func (d Dialect) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

// TruncateStatements returns the statements that empty a table and, where
// the provider allows it, reset its id sequence.
func (d Dialect) TruncateStatements(table string) ([]string, error) {
	if !IsValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	switch d.Name {
	case "postgresql":
		return []string{fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)}, nil
	case "mysql":
		// TRUNCATE is refused on tables other tables reference.
		return []string{
			fmt.Sprintf("DELETE FROM %s", table),
			fmt.Sprintf("ALTER TABLE %s AUTO_INCREMENT = 1", table),
		}, nil
	case "sqlite":
		return []string{
			fmt.Sprintf("DELETE FROM %s", table),
			fmt.Sprintf("DELETE FROM sqlite_sequence WHERE name = '%s'", table),
		}, nil
	default:
		return []string{fmt.Sprintf("DELETE FROM %s", table)}, nil
	}
}

// IsValidIdentifier reports whether name is safe to splice into SQL as a
// table or column name.
func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// WithAcquireTimeout bounds connection checkout. A zero timeout only
// inherits the parent deadline.
func WithAcquireTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
