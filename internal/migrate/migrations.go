// Package migrate brings a workspace database up to the current
// schema. The files embedded under sql/ run in lexical order; each
// applied file is recorded by name in schema_migrations, so a rerun
// applies only what a previous run has not.
package migrate

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// Migrate applies pending schema files inside one transaction and
// returns the names of the files it applied, oldest first. An empty
// result means the schema was already current.
func Migrate(db *sql.DB) ([]string, error) {
	paths, err := fs.Glob(schemaFS, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations(
    name TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	done, err := appliedSet(tx)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, path := range paths {
		name := strings.TrimPrefix(path, "sql/")
		if done[name] {
			continue
		}
		stmts, err := schemaFS.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(string(stmts)); err != nil {
			return nil, fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(name,applied_at) VALUES (?,?)`,
			name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return nil, fmt.Errorf("record %s: %w", name, err)
		}
		ran = append(ran, name)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ran, nil
}

func appliedSet(tx *sql.Tx) (map[string]bool, error) {
	rows, err := tx.Query(`SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()
	set := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		set[name] = true
	}
	return set, rows.Err()
}
