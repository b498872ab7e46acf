package scraper

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorevault/pkg/database"
	"lorevault/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateFrom(db, "../../docs/schema.sql"))
	return db
}

func TestSaveToDatabaseUpsertIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	batch := []models.Entry{
		{Name: "Acid Splash", Category: "Spell", URL: "https://www.dndbeyond.com/spells/241-acid-splash", Edition: models.EditionLegacy},
		{Name: "Fireball", Category: "Spell", URL: "https://www.dndbeyond.com/spells/2618862-fireball", Edition: models.EditionCurrent},
	}

	affected, err := SaveToDatabase(ctx, db, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	var id1 int64
	require.NoError(t, db.QueryRow(`SELECT id FROM entries WHERE url = ?`, batch[0].URL).Scan(&id1))

	// same batch again: same final state, no duplicate rows, identity kept
	_, err = SaveToDatabase(ctx, db, batch)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&count))
	assert.Equal(t, 2, count)

	var id2 int64
	var name, category string
	var edition sql.NullString
	require.NoError(t, db.QueryRow(
		`SELECT id, name, category, edition FROM entries WHERE url = ?`, batch[0].URL,
	).Scan(&id2, &name, &category, &edition))
	assert.Equal(t, id1, id2)
	assert.Equal(t, "Acid Splash", name)
	assert.Equal(t, "Spell", category)
	assert.Equal(t, "legacy", edition.String)
}

func TestSaveToDatabaseOverwritesFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	url := "https://www.dndbeyond.com/spells/241-acid-splash"
	_, err := SaveToDatabase(ctx, db, []models.Entry{
		{Name: "Acid Splash", Category: "Spell", URL: url},
	})
	require.NoError(t, err)

	// re-run classified the page this time
	_, err = SaveToDatabase(ctx, db, []models.Entry{
		{Name: "Acid Splash", Category: "Spell", URL: url, Edition: models.EditionCurrent},
	})
	require.NoError(t, err)

	var edition sql.NullString
	require.NoError(t, db.QueryRow(`SELECT edition FROM entries WHERE url = ?`, url).Scan(&edition))
	assert.Equal(t, "current", edition.String)
}

func TestSaveToDatabaseUnknownEditionIsNull(t *testing.T) {
	db := openTestDB(t)

	url := "https://www.dndbeyond.com/spells/241-acid-splash"
	_, err := SaveToDatabase(context.Background(), db, []models.Entry{
		{Name: "Acid Splash", Category: "Spell", URL: url},
	})
	require.NoError(t, err)

	var edition sql.NullString
	require.NoError(t, db.QueryRow(`SELECT edition FROM entries WHERE url = ?`, url).Scan(&edition))
	assert.False(t, edition.Valid)
}

func TestSaveToDatabaseEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	affected, err := SaveToDatabase(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
