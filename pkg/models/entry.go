package models

import "time"

// Edition tags which ruleset generation a content page belongs to.
//
// The empty value means "not yet determined" (the page body was never
// inspected, or inspection failed). It is deliberately distinct from
// EditionCurrent: an unclassified entry must not masquerade as current.
type Edition string

const (
	EditionUnknown Edition = ""
	EditionLegacy  Edition = "legacy"
	EditionCurrent Edition = "current"
)

// Entry is the canonical, internal form of one directory entry.
//
// The scraper produces these, the store upserts them keyed by URL, and the
// publish step serializes them. Identity (row id, timestamps) is assigned by
// the store and lives on EntryDB; this struct carries only the four fields
// that flow through the pipeline.
type Entry struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	URL      string  `json:"url"`
	Edition  Edition `json:"edition,omitempty"`
}

// EntryDB is a persisted entry as read back from the store.
type EntryDB struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	URL       string    `json:"url"`
	Edition   Edition   `json:"edition,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Canonical strips store identity, returning the pipeline form.
func (e EntryDB) Canonical() Entry {
	return Entry{Name: e.Name, Category: e.Category, URL: e.URL, Edition: e.Edition}
}

// PublishedEntry is the JSON shape written to the published dataset.
// Edition is a pointer so an unclassified entry serializes as null,
// matching what the frontend expects.
type PublishedEntry struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	URL      string  `json:"url"`
	Edition  *string `json:"edition"`
}

// Published converts an Entry to its publication form.
func (e Entry) Published() PublishedEntry {
	p := PublishedEntry{
		Name:     e.Name,
		Category: e.Category,
		URL:      e.URL,
	}
	if e.Edition != EditionUnknown {
		s := string(e.Edition)
		p.Edition = &s
	}
	return p
}
