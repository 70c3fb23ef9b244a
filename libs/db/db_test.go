package db

import (
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "appointments_slot_uq"})
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation")
	}
	if !IsUniqueViolation(err, "appointments_slot_uq") {
		t.Fatalf("expected match on constraint")
	}
	if IsUniqueViolation(err, "other") {
		t.Fatalf("unexpected match on other constraint")
	}
	if IsUniqueViolation(errors.New("boom"), "") {
		t.Fatalf("plain error is not a violation")
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to match")
	}
}

func TestMigrationFilesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql":   {Data: []byte("select 2")},
		"001_a.sql":   {Data: []byte("select 1")},
		"README.md":   {Data: []byte("x")},
		"sub/003.sql": {Data: []byte("select 3")},
	}
	names, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(names) != 2 || names[0] != "001_a.sql" || names[1] != "002_b.sql" {
		t.Fatalf("unexpected files: %v", names)
	}
}
