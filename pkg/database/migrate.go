package database

import (
	"database/sql"
	"fmt"
	"os"
)

// Migrate applies the schema file relative to the repo root. cmds run from
// the repo root; tests use MigrateFrom with their own relative path.
func Migrate(db *sql.DB) error {
	return MigrateFrom(db, "docs/schema.sql")
}

func MigrateFrom(db *sql.DB, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
