package publish

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorevault/pkg/models"
)

func baseEntries() []models.Entry {
	return []models.Entry{
		{Name: "Acid Splash", Category: "Spell", URL: "https://x.com/spells/241-acid-splash", Edition: models.EditionLegacy},
		{Name: "Aboleth", Category: "Monster", URL: "https://x.com/monsters/16762-aboleth", Edition: models.EditionCurrent},
	}
}

func TestApplyUpdateOverwritesOnlySetFields(t *testing.T) {
	out := Apply(baseEntries(), []Override{
		{Action: ActionUpdate, URL: "https://x.com/spells/241-acid-splash", Edition: "current"},
	})

	require.Len(t, out, 2)
	acid := out[1] // sorted by name: Aboleth, Acid Splash
	assert.Equal(t, "Acid Splash", acid.Name)
	assert.Equal(t, "Spell", acid.Category)
	assert.Equal(t, models.EditionCurrent, acid.Edition)
}

func TestApplyDelete(t *testing.T) {
	out := Apply(baseEntries(), []Override{
		{Action: ActionDelete, URL: "https://x.com/spells/241-acid-splash"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "Aboleth", out[0].Name)

	// deleting an absent URL is a no-op
	out = Apply(baseEntries(), []Override{
		{Action: ActionDelete, URL: "https://x.com/spells/999-nonexistent"},
	})
	assert.Len(t, out, 2)
}

func TestApplyAddWithEmptyEditionIsUnknown(t *testing.T) {
	out := Apply(baseEntries(), []Override{
		{Action: ActionAdd, URL: "https://x.com/feats/77-new-feat", Name: "New", Category: "Feat"},
	})

	require.Len(t, out, 3)
	var added *models.Entry
	for i := range out {
		if out[i].URL == "https://x.com/feats/77-new-feat" {
			added = &out[i]
		}
	}
	require.NotNil(t, added)
	assert.Equal(t, "New", added.Name)
	assert.Equal(t, "Feat", added.Category)
	assert.Equal(t, models.EditionUnknown, added.Edition)
}

func TestApplyUpdateOnAbsentURLBehavesAsAdd(t *testing.T) {
	out := Apply(baseEntries(), []Override{
		{Action: ActionUpdate, URL: "https://x.com/feats/77-new-feat", Name: "New", Category: "Feat", Edition: "current"},
	})

	require.Len(t, out, 3)
}

func TestApplySortsCaseInsensitively(t *testing.T) {
	base := []models.Entry{
		{Name: "zombie", Category: "Monster", URL: "https://x.com/monsters/1-zombie"},
		{Name: "Aboleth", Category: "Monster", URL: "https://x.com/monsters/2-aboleth"},
		{Name: "aarakocra", Category: "Monster", URL: "https://x.com/monsters/3-aarakocra"},
	}
	out := Apply(base, nil)

	require.Len(t, out, 3)
	assert.Equal(t, "aarakocra", out[0].Name)
	assert.Equal(t, "Aboleth", out[1].Name)
	assert.Equal(t, "zombie", out[2].Name)
}

func TestApplyLaterOverrideWins(t *testing.T) {
	out := Apply(baseEntries(), []Override{
		{Action: ActionUpdate, URL: "https://x.com/spells/241-acid-splash", Name: "First"},
		{Action: ActionUpdate, URL: "https://x.com/spells/241-acid-splash", Name: "Second"},
	})

	for _, e := range out {
		if e.URL == "https://x.com/spells/241-acid-splash" {
			assert.Equal(t, "Second", e.Name)
		}
	}
}

func TestWriteJSONDeterministic(t *testing.T) {
	dir := t.TempDir()
	overrides := []Override{
		{Action: ActionUpdate, URL: "https://x.com/spells/241-acid-splash", Edition: "current"},
		{Action: ActionAdd, URL: "https://x.com/feats/77-new-feat", Name: "New", Category: "Feat"},
	}

	p1 := filepath.Join(dir, "one.json")
	p2 := filepath.Join(dir, "two.json")
	require.NoError(t, WriteJSON(p1, Apply(baseEntries(), overrides)))
	require.NoError(t, WriteJSON(p2, Apply(baseEntries(), overrides)))

	b1, err := os.ReadFile(p1)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestWriteJSONShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, WriteJSON(path, []models.Entry{
		{Name: "New", Category: "Feat", URL: "https://x.com/feats/77-new-feat"},
	}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"name":"New","category":"Feat","url":"https://x.com/feats/77-new-feat","edition":null}]`,
		string(b))
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.csv")
	csv := "action,url,name,category,edition\n" +
		"update,https://x.com/spells/241-acid-splash,,,current\n" +
		"frobnicate,https://x.com/spells/1-bad,,,\n" + // unknown action skipped
		"delete,https://x.com/spells/2-gone,,,\n" +
		",https://x.com/spells/3-blank,,,\n" + // blank action skipped
		"add,https://x.com/feats/77-new-feat,New,Feat,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	got, err := LoadOverrides(path)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, ActionUpdate, got[0].Action)
	assert.Equal(t, "current", got[0].Edition)
	assert.Empty(t, got[0].Name)

	assert.Equal(t, ActionDelete, got[1].Action)

	assert.Equal(t, ActionAdd, got[2].Action)
	assert.Equal(t, "New", got[2].Name)
	assert.Empty(t, got[2].Edition)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	got, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
