package common

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestTruncateStatements(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    []string
	}{
		{PostgresDialect, []string{"TRUNCATE TABLE Patients RESTART IDENTITY CASCADE"}},
		{MySQLDialect, []string{
			"DELETE FROM Patients",
			"ALTER TABLE Patients AUTO_INCREMENT = 1",
		}},
		{SQLiteDialect, []string{
			"DELETE FROM Patients",
			"DELETE FROM sqlite_sequence WHERE name = 'Patients'",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			got, err := tt.dialect.TruncateStatements("Patients")
			if err != nil {
				t.Fatalf("TruncateStatements failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if _, err := PostgresDialect.TruncateStatements("Patients; DROP TABLE x"); err == nil {
		t.Error("expected invalid table name to be rejected")
	}
}

func TestBuilderPlaceholders(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{PostgresDialect, "INSERT INTO Doctors (name,specialty) VALUES ($1,$2)"},
		{MySQLDialect, "INSERT INTO Doctors (name,specialty) VALUES (?,?)"},
		{SQLiteDialect, "INSERT INTO Doctors (name,specialty) VALUES (?,?)"},
	}

	for _, tt := range tests {
		query, _, err := tt.dialect.Builder().
			Insert("Doctors").
			Columns("name", "specialty").
			Values(nil, nil).
			ToSql()
		if err != nil {
			t.Fatalf("%s: ToSql failed: %v", tt.dialect.Name, err)
		}
		if query != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.dialect.Name, tt.want, query)
		}
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"Patients", "medical_history", "_tmp", "t1"}
	invalid := []string{"", "1abc", "a-b", "a b", "a;b", `"quoted"`}

	for _, name := range valid {
		if !IsValidIdentifier(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}
	for _, name := range invalid {
		if IsValidIdentifier(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

func TestWithAcquireTimeout(t *testing.T) {
	ctx, cancel := WithAcquireTimeout(context.Background(), 0)
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Error("zero timeout should not set a deadline")
	}

	ctx2, cancel2 := WithAcquireTimeout(context.Background(), time.Minute)
	defer cancel2()
	if _, ok := ctx2.Deadline(); !ok {
		t.Error("expected a deadline")
	}
}
