package entries

import (
	"context"
	"database/sql"
	"fmt"

	"lorevault/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const entryColumns = `id, name, category, url, edition, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (*models.EntryDB, error) {
	var (
		e       models.EntryDB
		edition sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Category, &e.URL, &edition, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Edition = models.Edition(edition.String)
	return &e, nil
}

// List returns all entries ordered by name.
func (r *Repo) List(ctx context.Context) ([]models.EntryDB, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var out []models.EntryDB
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetByURL returns the entry with the given canonical URL, or nil.
func (r *Repo) GetByURL(ctx context.Context, url string) (*models.EntryDB, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE url = ?
	`, url)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByURL: %w", err)
	}
	return e, nil
}

// GetByID returns the entry with the given row id, or nil.
func (r *Repo) GetByID(ctx context.Context, id int64) (*models.EntryDB, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE id = ?
	`, id)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return e, nil
}

// Create inserts a new entry and returns it with store-assigned identity.
func (r *Repo) Create(ctx context.Context, e models.Entry) (*models.EntryDB, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO entries (name, category, url, edition)
		VALUES (?, ?, ?, ?)
	`, e.Name, e.Category, e.URL, nullEdition(e.Edition))
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update overwrites the mutable fields of an existing entry.
func (r *Repo) Update(ctx context.Context, id int64, e models.Entry) (*models.EntryDB, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE entries
		SET name = ?, category = ?, url = ?, edition = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, e.Name, e.Category, e.URL, nullEdition(e.Edition), id)
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Delete removes an entry by id. Returns false if no row matched.
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func nullEdition(e models.Edition) sql.NullString {
	if e == models.EditionUnknown {
		return sql.NullString{}
	}
	return sql.NullString{String: string(e), Valid: true}
}
