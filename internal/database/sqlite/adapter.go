package sqlite

import (
	"context"
	"strings"

	"github.com/Lumos-Labs-HQ/medload/internal/database/common"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a SQLite file. Writers from different workers serialise on
// the database lock, so a busy timeout and immediate transactions keep them
// waiting instead of failing with SQLITE_BUSY.
func Connect(ctx context.Context, url string, opts common.Options) (*common.SQLPool, error) {
	return common.OpenSQL(ctx, "sqlite3", ToPath(url), common.SQLiteDialect, opts)
}

func ToPath(url string) string {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	dbPath = strings.TrimPrefix(dbPath, "file:")
	if !strings.Contains(dbPath, "?") {
		dbPath += "?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate&_foreign_keys=on"
	}
	return dbPath
}
