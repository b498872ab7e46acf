package entries

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

func TestRepoCRUD(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Entry{
		Name:     "Acid Splash",
		Category: "Spell",
		URL:      "https://www.dndbeyond.com/spells/241-acid-splash",
		Edition:  models.EditionLegacy,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Positive(t, created.ID)
	assert.Equal(t, models.EditionLegacy, created.Edition)
	assert.False(t, created.CreatedAt.IsZero())

	byURL, err := repo.GetByURL(ctx, created.URL)
	require.NoError(t, err)
	require.NotNil(t, byURL)
	assert.Equal(t, created.ID, byURL.ID)

	updated, err := repo.Update(ctx, created.ID, models.Entry{
		Name:     "Acid Splash",
		Category: "Spell",
		URL:      created.URL,
		Edition:  models.EditionCurrent,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.EditionCurrent, updated.Edition)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRepoListOrderedByName(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	for _, e := range []models.Entry{
		{Name: "Fireball", Category: "Spell", URL: "https://x.com/spells/2-fireball"},
		{Name: "Acid Splash", Category: "Spell", URL: "https://x.com/spells/1-acid-splash"},
	} {
		_, err := repo.Create(ctx, e)
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Acid Splash", list[0].Name)
	assert.Equal(t, "Fireball", list[1].Name)
}

func TestRepoUpdateMissingReturnsNil(t *testing.T) {
	repo := NewRepo(openTestDB(t))

	got, err := repo.Update(context.Background(), 999, models.Entry{
		Name: "X", Category: "Spell", URL: "https://x.com/spells/1-x",
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepoUniqueURL(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	e := models.Entry{Name: "X", Category: "Spell", URL: "https://x.com/spells/1-x"}
	_, err := repo.Create(ctx, e)
	require.NoError(t, err)

	_, err = repo.Create(ctx, e)
	assert.Error(t, err)
}
