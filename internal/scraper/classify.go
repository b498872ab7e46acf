package scraper

import (
	"strings"

	"lorevault/pkg/models"
)

// Marker strings used to classify fetched page bodies. These are plain
// substring tests against the raw HTML, not DOM queries; keep all matching
// behind IsHomebrew/DetectEdition so the strategy can be swapped without
// touching the pipeline.
const (
	// present on community-authored homebrew pages, never on official content
	homebrewMarker = `class="i-homebrew"`

	// banner text shown on every superseded-ruleset content page
	legacyBannerText = "doesn't reflect the latest rules and lore"
)

// IsHomebrew reports whether the page is user-created homebrew content.
// Homebrew pages are excluded from the directory entirely.
func IsHomebrew(html string) bool {
	return strings.Contains(html, homebrewMarker)
}

// DetectEdition classifies a fetched page body as legacy or current.
// Callers must only invoke this with an actual body; a page that could not
// be fetched stays EditionUnknown rather than defaulting to current.
func DetectEdition(html string) models.Edition {
	if strings.Contains(html, legacyBannerText) {
		return models.EditionLegacy
	}
	return models.EditionCurrent
}
