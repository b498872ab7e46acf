package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"lorevault/pkg/models"
)

// srdBaseURL hosts the 5e SRD reference dataset used as the coverage
// yardstick for the published directory.
const srdBaseURL = "https://raw.githubusercontent.com/5e-bits/5e-database/main/src/2014"

// categoryMap pairs SRD filename stems with our category names.
var categoryMap = []struct {
	File     string
	Category string
}{
	{"5e-SRD-Spells", "Spell"},
	{"5e-SRD-Monsters", "Monster"},
	{"5e-SRD-Classes", "Class"},
	{"5e-SRD-Subclasses", "Subclass"},
	{"5e-SRD-Races", "Species"},
	{"5e-SRD-Equipment", "Equipment"},
	{"5e-SRD-Magic-Items", "Magic Item"},
	{"5e-SRD-Feats", "Feat"},
	{"5e-SRD-Backgrounds", "Background"},
}

type coverage struct {
	Category string
	Covered  int
	Total    int
	Missing  []string
}

func main() {
	var (
		entriesPath = flag.String("entries", "public/entries.json", "path to the published entries JSON")
		edition     = flag.String("edition", "", "only consider entries with this edition (legacy|current)")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ours, err := loadEntries(*entriesPath, *edition)
	if err != nil {
		log.Fatalf("load entries: %v", err)
	}
	total := 0
	for _, names := range ours {
		total += len(names)
	}
	log.Printf("loaded %d entries from %s", total, *entriesPath)

	client := &http.Client{Timeout: 30 * time.Second}

	var results []coverage
	for _, cm := range categoryMap {
		log.Printf("fetching SRD %s...", cm.Category)
		srdNames, err := fetchSRDNames(ctx, client, cm.File)
		if err != nil {
			log.Fatalf("fetch SRD %s: %v", cm.File, err)
		}

		ourSet := ours[cm.Category]
		var missing []string
		for _, n := range srdNames {
			if !ourSet[normalize(n)] {
				missing = append(missing, n)
			}
		}
		results = append(results, coverage{
			Category: cm.Category,
			Covered:  len(srdNames) - len(missing),
			Total:    len(srdNames),
			Missing:  missing,
		})
	}

	fmt.Println("\nSRD Coverage Report")
	if *edition != "" {
		fmt.Printf("(comparing against edition=%s entries only)\n", *edition)
	}
	fmt.Println()
	for _, r := range results {
		pct := 0.0
		if r.Total > 0 {
			pct = float64(r.Covered) / float64(r.Total) * 100
		}
		fmt.Printf("  %-12s %4d / %-4d (%5.1f%%)\n", r.Category, r.Covered, r.Total, pct)
	}
	fmt.Println()
	for _, r := range results {
		if len(r.Missing) == 0 {
			continue
		}
		fmt.Printf("--- Missing %s (%d) ---\n", r.Category, len(r.Missing))
		for _, n := range r.Missing {
			fmt.Printf("  %s\n", n)
		}
		fmt.Println()
	}
}

// loadEntries returns {category: set of normalized names} from the published
// JSON, optionally filtered to one edition.
func loadEntries(path, editionFilter string) (map[string]map[string]bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var published []models.PublishedEntry
	if err := json.Unmarshal(b, &published); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	byCategory := make(map[string]map[string]bool)
	for _, e := range published {
		if editionFilter != "" {
			if e.Edition == nil || *e.Edition != editionFilter {
				continue
			}
		}
		if byCategory[e.Category] == nil {
			byCategory[e.Category] = make(map[string]bool)
		}
		byCategory[e.Category][normalize(e.Name)] = true
	}
	return byCategory, nil
}

func fetchSRDNames(ctx context.Context, client *http.Client, file string) ([]string, error) {
	url := fmt.Sprintf("%s/%s.json", srdBaseURL, file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var items []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	return names, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
