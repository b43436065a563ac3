package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/medload/internal/database/common"
	driver "github.com/go-sql-driver/mysql"
)

var sslModeParams = strings.NewReplacer(
	"ssl-mode=REQUIRED", "tls=skip-verify",
	"ssl-mode=DISABLED", "tls=false",
	"ssl-mode=VERIFY_CA", "tls=true",
	"ssl-mode=VERIFY_IDENTITY", "tls=true",
	"sslmode=require", "tls=skip-verify",
	"sslmode=disable", "tls=false",
	"sslmode=verify-ca", "tls=true",
	"sslmode=verify-full", "tls=true",
)

func Connect(ctx context.Context, url string, opts common.Options) (*common.SQLPool, error) {
	dsn, err := ToDSN(url)
	if err != nil {
		return nil, err
	}
	return common.OpenSQL(ctx, "mysql", dsn, common.MySQLDialect, opts)
}

// ToDSN accepts either a go-sql-driver DSN or a mysql:// URL and returns a
// DSN with time parsing enabled, since birthdays and appointment times are
// bound as time.Time.
func ToDSN(url string) (string, error) {
	dsn := url
	if strings.HasPrefix(url, "mysql://") {
		dsn = strings.TrimPrefix(url, "mysql://")

		if atIndex := strings.LastIndex(dsn, "@"); atIndex > 0 {
			credentials := dsn[:atIndex]
			remainder := dsn[atIndex+1:]

			if slashIndex := strings.Index(remainder, "/"); slashIndex > 0 {
				hostPort := remainder[:slashIndex]
				dbAndParams := sslModeParams.Replace(remainder[slashIndex+1:])
				dsn = fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
			}
		}
	}

	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
