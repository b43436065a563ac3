package template

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Lumos-Labs-HQ/medload/internal/config"
	"github.com/spf13/viper"
)

func TestGetConfigLoadsBack(t *testing.T) {
	for _, dbType := range []DatabaseType{PostgreSQL, MySQL, SQLite} {
		t.Run(string(dbType), func(t *testing.T) {
			out, err := NewProjectTemplate(dbType).GetConfig()
			if err != nil {
				t.Fatalf("GetConfig failed: %v", err)
			}

			viper.Reset()
			defer viper.Reset()
			viper.SetConfigType("yaml")
			if err := viper.ReadConfig(bytes.NewBufferString(out)); err != nil {
				t.Fatalf("rendered config is not valid yaml: %v", err)
			}

			cfg, err := config.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Database.Provider != string(dbType) {
				t.Errorf("Expected provider %s, got %s", dbType, cfg.Database.Provider)
			}
			if cfg.Seed.JoinTimeout != time.Hour {
				t.Errorf("Expected 1h join timeout, got %s", cfg.Seed.JoinTimeout)
			}
			if cfg.Seed.Tables[config.TableAppointments] != 1_000_000 {
				t.Errorf("Expected 1000000 appointments, got %d", cfg.Seed.Tables[config.TableAppointments])
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("rendered config is invalid: %v", err)
			}
		})
	}
}

func TestGetSchema(t *testing.T) {
	tests := []struct {
		dbType DatabaseType
		want   []string
	}{
		{PostgreSQL, []string{"id SERIAL PRIMARY KEY", "appointment_datetime TIMESTAMP NOT NULL"}},
		{MySQL, []string{"INT AUTO_INCREMENT PRIMARY KEY", "ENUM('Scheduled'", "ENGINE=InnoDB"}},
		{SQLite, []string{"INTEGER PRIMARY KEY AUTOINCREMENT", "CHECK (status IN"}},
	}

	for _, tt := range tests {
		schema := NewProjectTemplate(tt.dbType).GetSchema()
		for _, table := range []string{"Patients", "Doctors", "Appointments", "MedicalHistory"} {
			if !strings.Contains(schema, "CREATE TABLE "+table+" (") {
				t.Errorf("%s: missing table %s", tt.dbType, table)
			}
		}
		for _, part := range tt.want {
			if !strings.Contains(schema, part) {
				t.Errorf("%s: expected %q in schema", tt.dbType, part)
			}
		}
	}
}

func TestParseDatabaseType(t *testing.T) {
	tests := map[string]DatabaseType{
		"postgres":   PostgreSQL,
		"postgresql": PostgreSQL,
		"MySQL":      MySQL,
		"sqlite3":    SQLite,
	}
	for name, want := range tests {
		got, err := ParseDatabaseType(name)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}

	if _, err := ParseDatabaseType("oracle"); err == nil {
		t.Error("expected an unknown type to fail")
	}
}
