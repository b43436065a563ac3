package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Lumos-Labs-HQ/medload/internal/database"
	"github.com/spf13/viper"
)

// DefaultJoinTimeout applies when seed.join_timeout is not set at all. An
// explicit 0 waits for the workers without limit.
const DefaultJoinTimeout = time.Hour

const (
	DistributionStrict   = "strict"
	DistributionTruncate = "truncate"
)

// Table keys used in the seed.tables section. Viper lowercases map keys,
// so these are matched against table specs rather than SQL table names.
const (
	TablePatients       = "patients"
	TableDoctors        = "doctors"
	TableAppointments   = "appointments"
	TableMedicalHistory = "medical_history"
)

type Config struct {
	Database Database `json:"database" yaml:"database" mapstructure:"database"`
	Seed     Seed     `json:"seed" yaml:"seed" mapstructure:"seed"`
	Log      Log      `json:"log" yaml:"log" mapstructure:"log"`
}

type Database struct {
	Provider       string        `json:"provider" yaml:"provider" mapstructure:"provider"`
	Driver         string        `json:"driver,omitempty" yaml:"driver,omitempty" mapstructure:"driver"` // pgx (default) or pq, postgres only
	URLEnv         string        `json:"url_env" yaml:"url_env" mapstructure:"url_env"`
	MaxConns       int           `json:"max_conns" yaml:"max_conns" mapstructure:"max_conns"`
	MinConns       int           `json:"min_conns" yaml:"min_conns" mapstructure:"min_conns"`
	IdleTimeout    time.Duration `json:"idle_timeout" yaml:"idle_timeout" mapstructure:"idle_timeout"`
	AcquireTimeout time.Duration `json:"acquire_timeout" yaml:"acquire_timeout" mapstructure:"acquire_timeout"`
	MaxLifetime    time.Duration `json:"max_lifetime" yaml:"max_lifetime" mapstructure:"max_lifetime"`
	StatementCache int           `json:"statement_cache" yaml:"statement_cache" mapstructure:"statement_cache"`
}

type Seed struct {
	Workers      int            `json:"workers" yaml:"workers" mapstructure:"workers"`
	BatchSize    int            `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`
	JoinTimeout  time.Duration  `json:"join_timeout" yaml:"join_timeout" mapstructure:"join_timeout"`
	Distribution string         `json:"distribution" yaml:"distribution" mapstructure:"distribution"`
	FailFast     bool           `json:"fail_fast" yaml:"fail_fast" mapstructure:"fail_fast"`
	Truncate     bool           `json:"truncate" yaml:"truncate" mapstructure:"truncate"`
	RandomSeed   uint64         `json:"seed" yaml:"seed" mapstructure:"seed"` // 0 picks a random seed
	Tables       map[string]int `json:"tables" yaml:"tables" mapstructure:"tables"`
}

type Log struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"` // console or json
}

// DefaultTableCounts are the volumes of a run with no overrides.
func DefaultTableCounts() map[string]int {
	return map[string]int{
		TablePatients:       500_000,
		TableDoctors:        5_000,
		TableAppointments:   1_000_000,
		TableMedicalHistory: 500_000,
	}
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if !viper.IsSet("seed.join_timeout") {
		cfg.Seed.JoinTimeout = DefaultJoinTimeout
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or env overrides
// are present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.Seed.JoinTimeout = DefaultJoinTimeout
	return &cfg
}

// RegisterDefaults makes every key known to viper, so MEDLOAD_* environment
// variables apply even when no config file sets the key.
func RegisterDefaults() {
	d := Default()
	viper.SetDefault("database.provider", d.Database.Provider)
	viper.SetDefault("database.driver", d.Database.Driver)
	viper.SetDefault("database.url_env", d.Database.URLEnv)
	viper.SetDefault("database.max_conns", d.Database.MaxConns)
	viper.SetDefault("database.min_conns", d.Database.MinConns)
	viper.SetDefault("database.idle_timeout", d.Database.IdleTimeout)
	viper.SetDefault("database.acquire_timeout", d.Database.AcquireTimeout)
	viper.SetDefault("database.max_lifetime", d.Database.MaxLifetime)
	viper.SetDefault("database.statement_cache", d.Database.StatementCache)

	viper.SetDefault("seed.workers", d.Seed.Workers)
	viper.SetDefault("seed.batch_size", d.Seed.BatchSize)
	viper.SetDefault("seed.join_timeout", d.Seed.JoinTimeout)
	viper.SetDefault("seed.distribution", d.Seed.Distribution)
	viper.SetDefault("seed.fail_fast", d.Seed.FailFast)
	viper.SetDefault("seed.truncate", d.Seed.Truncate)
	viper.SetDefault("seed.seed", d.Seed.RandomSeed)
	for key, count := range d.Seed.Tables {
		viper.SetDefault("seed.tables."+key, count)
	}

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

func (c *Config) applyDefaults() {
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "pgx"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 12
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 8
	}
	if c.Database.IdleTimeout == 0 {
		c.Database.IdleTimeout = 10 * time.Second
	}
	if c.Database.AcquireTimeout == 0 {
		c.Database.AcquireTimeout = 30 * time.Second
	}
	if c.Database.MaxLifetime == 0 {
		c.Database.MaxLifetime = 30 * time.Minute
	}
	if c.Database.StatementCache == 0 {
		c.Database.StatementCache = 250
	}

	if c.Seed.Workers == 0 {
		c.Seed.Workers = 6
	}
	if c.Seed.BatchSize == 0 {
		c.Seed.BatchSize = 1000
	}
	if c.Seed.Distribution == "" {
		c.Seed.Distribution = DistributionStrict
	}
	counts := DefaultTableCounts()
	if c.Seed.Tables == nil {
		c.Seed.Tables = counts
	} else {
		for key, count := range counts {
			if _, ok := c.Seed.Tables[key]; !ok {
				c.Seed.Tables[key] = count
			}
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.Database.Driver != "pgx" && c.Database.Driver != "pq" {
		return fmt.Errorf("unsupported postgres driver: %s (use pgx or pq)", c.Database.Driver)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be at least 1")
	}

	if c.Seed.Workers < 1 {
		return fmt.Errorf("seed.workers must be at least 1, got %d", c.Seed.Workers)
	}
	if c.Seed.BatchSize < 1 {
		return fmt.Errorf("seed.batch_size must be at least 1, got %d", c.Seed.BatchSize)
	}
	if c.Seed.JoinTimeout < 0 {
		return fmt.Errorf("seed.join_timeout cannot be negative")
	}
	if c.Seed.Distribution != DistributionStrict && c.Seed.Distribution != DistributionTruncate {
		return fmt.Errorf("seed.distribution must be %q or %q, got %q", DistributionStrict, DistributionTruncate, c.Seed.Distribution)
	}
	for key, count := range c.Seed.Tables {
		if count < 0 {
			return fmt.Errorf("seed.tables.%s cannot be negative", key)
		}
	}

	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}

	return nil
}

// CheckPoolCapacity rejects settings where the tables of one phase cannot
// all hold a connection per worker at the same time. Workers that wait out
// acquire_timeout lose their whole share.
func (c *Config) CheckPoolCapacity(concurrentTables int) error {
	need := c.Seed.Workers * concurrentTables
	if need > c.Database.MaxConns {
		return fmt.Errorf("seed.workers %d across %d concurrent tables needs %d connections, database.max_conns is %d",
			c.Seed.Workers, concurrentTables, need, c.Database.MaxConns)
	}
	return nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

// PoolOptions converts the database section into provider pool settings.
func (c *Config) PoolOptions() database.Options {
	return database.Options{
		MaxConns:       c.Database.MaxConns,
		MinConns:       c.Database.MinConns,
		IdleTimeout:    c.Database.IdleTimeout,
		AcquireTimeout: c.Database.AcquireTimeout,
		MaxLifetime:    c.Database.MaxLifetime,
		StatementCache: c.Database.StatementCache,
	}
}
