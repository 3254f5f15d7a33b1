package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// testDB opens the Postgres instance named by TEST_DATABASE_URL and makes
// sure the schema exists. Tests that need a real database skip when the
// variable is unset, so the suite stays runnable without infrastructure.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanupClient removes one test client and its child rows.
func cleanupClient(t *testing.T, db *sql.DB, clientID string) {
	t.Helper()
	t.Cleanup(func() {
		db.Exec(`DELETE FROM plan_suplementario WHERE client_id = $1`, clientID)
		db.Exec(`DELETE FROM dependiente WHERE client_id = $1`, clientID)
		db.Exec(`DELETE FROM cliente WHERE client_id = $1`, clientID)
	})
}

// cleanupDraft removes one test draft row.
func cleanupDraft(t *testing.T, db *sql.DB, draftID string) {
	t.Helper()
	t.Cleanup(func() {
		db.Exec(`DELETE FROM borrador WHERE draft_id = $1`, draftID)
	})
}
