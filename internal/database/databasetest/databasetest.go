// Package databasetest opens migrated in-memory SQLite databases for tests.
package databasetest

import (
	"io"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/database"
)

// New returns a fresh in-memory database with all migrations applied. It is
// closed automatically when the test finishes.
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	if err := database.Migrate(db, database.DriverSQLite, quiet); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
