package seeder

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/medload/internal/database"
	"github.com/Lumos-Labs-HQ/medload/internal/database/common"
	"github.com/rs/zerolog"
)

const DefaultBatchSize = 1000

type WriteStats struct {
	Rows    int
	Batches int
}

// BatchWriter inserts rows into one table through a single connection,
// one transaction per batch. It is owned by one worker.
type BatchWriter struct {
	conn      database.Conn
	table     string
	columns   []string
	query     string
	batchSize int
	log       zerolog.Logger
	pending   [][]interface{}
}

func NewBatchWriter(conn database.Conn, dialect database.Dialect, table string, columns []string, batchSize int, log zerolog.Logger) (*BatchWriter, error) {
	if !common.IsValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns to insert", table)
	}
	for _, col := range columns {
		if !common.IsValidIdentifier(col) {
			return nil, fmt.Errorf("invalid column name in table %s: %s", table, col)
		}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	query, _, err := dialect.Builder().
		Insert(table).
		Columns(columns...).
		Values(make([]interface{}, len(columns))...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert for %s: %w", table, err)
	}

	return &BatchWriter{
		conn:      conn,
		table:     table,
		columns:   columns,
		query:     query,
		batchSize: batchSize,
		log:       log,
		pending:   make([][]interface{}, 0, batchSize),
	}, nil
}

// Query returns the parameterised INSERT executed for every row.
func (w *BatchWriter) Query() string {
	return w.query
}

// Write generates count rows, starting at index offset, and commits them in
// batches of the configured size; the trailing partial batch is committed
// too. On error the in-flight batch is rolled back and the returned stats
// cover only the batches committed before it. The context is checked
// before each batch.
func (w *BatchWriter) Write(ctx context.Context, offset, count int, row func(index int) []interface{}) (WriteStats, error) {
	var stats WriteStats
	w.pending = w.pending[:0]

	for i := 0; i < count; i++ {
		values := row(offset + i)
		if len(values) != len(w.columns) {
			return stats, fmt.Errorf("row %d of %s has %d values for %d columns", offset+i, w.table, len(values), len(w.columns))
		}
		w.pending = append(w.pending, values)

		if len(w.pending) < w.batchSize && i < count-1 {
			continue
		}

		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("stopped before batch %d of %s: %w", stats.Batches+1, w.table, err)
		}
		if err := w.flush(ctx); err != nil {
			return stats, fmt.Errorf("batch %d of %s: %w", stats.Batches+1, w.table, err)
		}
		stats.Rows += len(w.pending)
		stats.Batches++
		w.pending = w.pending[:0]
	}

	return stats, nil
}

func (w *BatchWriter) flush(ctx context.Context) error {
	tx, err := w.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := tx.ExecBatch(ctx, w.query, w.pending); err != nil {
		w.rollback(ctx, tx)
		return fmt.Errorf("exec: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		w.rollback(ctx, tx)
		return fmt.Errorf("commit: %w", err)
	}

	w.log.Trace().Int("rows", len(w.pending)).Msg("batch committed")
	return nil
}

// rollback runs even when ctx is already cancelled so the connection goes
// back to the pool clean.
func (w *BatchWriter) rollback(ctx context.Context, tx database.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		w.log.Debug().Err(err).Msg("rollback failed")
	}
}
