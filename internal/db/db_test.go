package db_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpemor/DashWeb/internal/db"
)

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"postgres://user:pw@localhost:5432/dash", true},
		{"postgresql://localhost/dash", true},
		{"host=localhost user=dash dbname=dash sslmode=disable", true},
		{"snapshots.db", false},
		{"file::memory:?cache=shared", false},
	}
	for _, tt := range tests {
		if got := db.IsPostgres(tt.dsn); got != tt.want {
			t.Errorf("IsPostgres(%q) = %v, want %v", tt.dsn, got, tt.want)
		}
	}
}

func TestOpenSqlite(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close(d)

	if err := db.EnsureSchema(d, "dashweb"); err != nil {
		t.Errorf("EnsureSchema on sqlite: %v", err)
	}
}

func TestOpenEmpty(t *testing.T) {
	if _, err := db.Open(""); !errors.Is(err, db.ErrEmptyDSN) {
		t.Errorf("err = %v", err)
	}
}

func TestOpenPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	d, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close(d)
	if err := db.EnsureSchema(d, "dashweb_test"); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
}
