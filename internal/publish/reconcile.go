package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lorevault/pkg/models"
)

// Apply merges the persisted entry set with the correction list to produce
// the final published set. Overrides win: delete removes the URL, add
// replaces it wholesale, update overwrites only the fields the row actually
// sets (an update for an unknown URL behaves as an add). The result is
// ordered by name, case-insensitively, with the URL as tie-breaker so the
// output is deterministic.
func Apply(base []models.Entry, overrides []Override) []models.Entry {
	byURL := make(map[string]models.Entry, len(base))
	for _, e := range base {
		byURL[e.URL] = e
	}

	for _, ov := range overrides {
		switch ov.Action {
		case ActionDelete:
			delete(byURL, ov.URL)

		case ActionAdd:
			byURL[ov.URL] = models.Entry{
				Name:     ov.Name,
				Category: ov.Category,
				URL:      ov.URL,
				Edition:  models.Edition(ov.Edition),
			}

		case ActionUpdate:
			entry, ok := byURL[ov.URL]
			if !ok {
				// URL not in the base set — treat as an add
				byURL[ov.URL] = models.Entry{
					Name:     ov.Name,
					Category: ov.Category,
					URL:      ov.URL,
					Edition:  models.Edition(ov.Edition),
				}
				continue
			}
			if ov.Name != "" {
				entry.Name = ov.Name
			}
			if ov.Category != "" {
				entry.Category = ov.Category
			}
			if ov.Edition != "" {
				entry.Edition = models.Edition(ov.Edition)
			}
			byURL[ov.URL] = entry
		}
	}

	out := make([]models.Entry, 0, len(byURL))
	for _, e := range byURL {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].URL < out[j].URL
	})
	return out
}

// WriteJSON serializes the published set as a compact JSON array at path,
// creating parent directories as needed. Re-running on the same input
// produces byte-identical output.
func WriteJSON(path string, entries []models.Entry) error {
	published := make([]models.PublishedEntry, 0, len(entries))
	for _, e := range entries {
		published = append(published, e.Published())
	}

	b, err := json.Marshal(published)
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
