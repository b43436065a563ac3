package seeder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Lumos-Labs-HQ/medload/internal/database"
	"github.com/Lumos-Labs-HQ/medload/internal/database/common"
	"github.com/rs/zerolog"
)

var errInjected = errors.New("injected failure")

// fakeDB is an in-memory Pool. Committed rows get sequential ids per table.
type fakeDB struct {
	mu      sync.Mutex
	rows    map[string][]fakeRow
	nextID  map[string]int64
	conns   int
	open    int
	maxOpen int
	batches int

	// failBatch is consulted before every ExecBatch with the 1-based batch
	// number on that connection. A non-nil block then holds the batch until
	// it is closed or the context ends.
	failBatch  func(table string, batch int) error
	readErr    map[string]error
	acquireErr error
	block      chan struct{}
}

type fakeRow struct {
	id     int64
	values []interface{}
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		rows:    make(map[string][]fakeRow),
		nextID:  make(map[string]int64),
		readErr: make(map[string]error),
	}
}

func (db *fakeDB) Acquire(ctx context.Context) (database.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.acquireErr != nil {
		return nil, db.acquireErr
	}
	db.conns++
	db.open++
	if db.open > db.maxOpen {
		db.maxOpen = db.open
	}
	return &fakeConn{db: db}, nil
}

func (db *fakeDB) Ping(context.Context) error { return nil }

func (db *fakeDB) Dialect() database.Dialect { return common.MySQLDialect }

func (db *fakeDB) Close() error { return nil }

// insert stores rows with the given ids in the given order, as if another
// client had written them.
func (db *fakeDB) insert(table string, ids ...int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, id := range ids {
		db.rows[table] = append(db.rows[table], fakeRow{id: id})
		db.nextID[table] = max(db.nextID[table], id)
	}
}

func (db *fakeDB) count(table string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.rows[table])
}

func (db *fakeDB) ids(table string) map[int64]bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	set := make(map[int64]bool, len(db.rows[table]))
	for _, r := range db.rows[table] {
		set[r.id] = true
	}
	return set
}

// column returns the committed values of one column position.
func (db *fakeDB) column(table string, pos int) []interface{} {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]interface{}, 0, len(db.rows[table]))
	for _, r := range db.rows[table] {
		out = append(out, r.values[pos])
	}
	return out
}

type fakeConn struct {
	db      *fakeDB
	batches int
}

func (c *fakeConn) Begin(ctx context.Context) (database.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &fakeTx{conn: c}, nil
}

func (c *fakeConn) Exec(_ context.Context, query string, _ ...interface{}) error {
	fields := strings.Fields(query)
	if len(fields) >= 3 && fields[0] == "ALTER" {
		return nil
	}
	if len(fields) < 3 || fields[0] != "DELETE" {
		return fmt.Errorf("unsupported statement: %s", query)
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	delete(c.db.rows, fields[2])
	return nil
}

// QueryInt64s understands the two statements IDReader builds:
// "SELECT id FROM t ORDER BY id" and "SELECT COUNT(*) FROM t".
func (c *fakeConn) QueryInt64s(_ context.Context, query string, _ ...interface{}) ([]int64, error) {
	fields := strings.Fields(query)
	if len(fields) < 4 || fields[0] != "SELECT" || fields[2] != "FROM" {
		return nil, fmt.Errorf("unsupported query: %s", query)
	}
	table := fields[3]

	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.db.readErr[table]; err != nil {
		return nil, err
	}
	if fields[1] == "COUNT(*)" {
		return []int64{int64(len(c.db.rows[table]))}, nil
	}
	ids := make([]int64, 0, len(c.db.rows[table]))
	for _, r := range c.db.rows[table] {
		ids = append(ids, r.id)
	}
	if strings.Contains(query, "ORDER BY") {
		slices.Sort(ids)
	}
	return ids, nil
}

func (c *fakeConn) Release() {
	c.db.mu.Lock()
	c.db.open--
	c.db.mu.Unlock()
}

type fakeTx struct {
	conn    *fakeConn
	table   string
	pending [][]interface{}
}

func (tx *fakeTx) ExecBatch(ctx context.Context, query string, rows [][]interface{}) error {
	fields := strings.Fields(query)
	if len(fields) < 3 || fields[0] != "INSERT" {
		return fmt.Errorf("unsupported statement: %s", query)
	}
	tx.table = fields[2]

	tx.conn.batches++
	db := tx.conn.db
	db.mu.Lock()
	hook := db.failBatch
	block := db.block
	db.mu.Unlock()
	if hook != nil {
		if err := hook(tx.table, tx.conn.batches); err != nil {
			return err
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// The writer reuses its batch slice after commit.
	tx.pending = append(tx.pending, rows...)
	return nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db := tx.conn.db
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, values := range tx.pending {
		db.nextID[tx.table]++
		db.rows[tx.table] = append(db.rows[tx.table], fakeRow{id: db.nextID[tx.table], values: values})
	}
	if len(tx.pending) > 0 {
		db.batches++
	}
	tx.pending = nil
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.pending = nil
	return nil
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// failOnce fails batch n of the first connection that reaches it, for one
// table only.
func failOnce(table string, n int) func(string, int) error {
	var once sync.Once
	return func(t string, batch int) error {
		if t != table || batch != n {
			return nil
		}
		var err error
		once.Do(func() { err = errInjected })
		return err
	}
}
