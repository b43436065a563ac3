package database

import "github.com/Lumos-Labs-HQ/medload/internal/database/common"

// The seeding pipeline only needs checkout, transactions and a dialect;
// provider packages implement these without importing this package.
type (
	Pool    = common.Pool
	Conn    = common.Conn
	Tx      = common.Tx
	Dialect = common.Dialect
	Options = common.Options
)
