package scraper

import (
	"context"
	"database/sql"
	"fmt"

	"lorevault/pkg/models"
)

// SaveToDatabase upserts the given candidate entries into the `entries`
// table keyed by url. Existing rows keep their id and created_at; name,
// category and edition are overwritten and updated_at advances. The whole
// batch is applied in one transaction so a failed run leaves no partial
// writes. Returns the number of rows affected.
func SaveToDatabase(ctx context.Context, db *sql.DB, entries []models.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (name, category, url, edition)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
		  name = excluded.name,
		  category = excluded.category,
		  edition = excluded.edition,
		  updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	var affected int64
	for _, e := range entries {
		var edition sql.NullString
		if e.Edition != models.EditionUnknown {
			edition = sql.NullString{String: string(e.Edition), Valid: true}
		}

		res, err := stmt.ExecContext(ctx, e.Name, e.Category, e.URL, edition)
		if err != nil {
			return 0, fmt.Errorf("exec upsert for %s: %w", e.URL, err)
		}
		n, _ := res.RowsAffected()
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return affected, nil
}
