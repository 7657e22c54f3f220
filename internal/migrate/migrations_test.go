package migrate_test

import (
	"testing"

	"teamboard/internal/db"
	"teamboard/internal/migrate"
)

func TestMigrateAppliesPendingOnce(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	applied, err := migrate.Migrate(conn)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) == 0 {
		t.Fatal("fresh database applied no migrations")
	}

	again, err := migrate.Migrate(conn)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("rerun reapplied %v", again)
	}

	// the resulting schema is usable
	if _, err := conn.Exec(`INSERT INTO users(username,email,password_hash,created_at,updated_at)
VALUES ('alice','alice@example.com','x','2024-01-01T00:00:00Z','2024-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("insert into migrated schema: %v", err)
	}
}
