package database

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/medload/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/medload/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/medload/internal/database/sqlite"
)

// NewPool connects the configured provider. driver only matters for
// postgres, where "pq" selects database/sql over the native pgx pool.
func NewPool(ctx context.Context, provider, driver, url string, opts Options) (Pool, error) {
	var (
		pool Pool
		err  error
	)
	switch provider {
	case "postgresql", "postgres", "":
		if driver == "pq" {
			pool, err = postgres.ConnectSQL(ctx, url, opts)
		} else {
			pool, err = postgres.Connect(ctx, url, opts)
		}
	case "mysql":
		pool, err = mysql.Connect(ctx, url, opts)
	case "sqlite", "sqlite3":
		pool, err = sqlite.Connect(ctx, url, opts)
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}
	return pool, nil
}
