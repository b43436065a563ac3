package seeder

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/medload/internal/database"
	"github.com/Lumos-Labs-HQ/medload/internal/database/common"
)

// IDReader loads the primary keys of a populated table. The whole id set is
// held in memory.
type IDReader struct {
	pool database.Pool
}

func NewIDReader(pool database.Pool) *IDReader {
	return &IDReader{pool: pool}
}

// ReadIDs returns every value of pk in table, ascending.
func (r *IDReader) ReadIDs(ctx context.Context, table, pk string) ([]int64, error) {
	if !common.IsValidIdentifier(table) || !common.IsValidIdentifier(pk) {
		return nil, fmt.Errorf("invalid identifier: %s.%s", table, pk)
	}

	query, args, err := r.pool.Dialect().Builder().
		Select(pk).
		From(table).
		OrderBy(pk).
		ToSql()
	if err != nil {
		return nil, err
	}

	ids, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read ids from %s: %w", table, err)
	}
	return ids, nil
}

func (r *IDReader) Count(ctx context.Context, table string) (int64, error) {
	if !common.IsValidIdentifier(table) {
		return 0, fmt.Errorf("invalid table name: %s", table)
	}

	query, args, err := r.pool.Dialect().Builder().
		Select("COUNT(*)").
		From(table).
		ToSql()
	if err != nil {
		return 0, err
	}

	values, err := r.query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("count of %s returned %d rows", table, len(values))
	}
	return values[0], nil
}

func (r *IDReader) query(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()
	return conn.QueryInt64s(ctx, query, args...)
}
