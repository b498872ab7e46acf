package scraper

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"lorevault/pkg/models"
)

func logf(format string, args ...any) {
	log.Printf("[scraper] "+format, args...)
}

// ContentPrefix maps a site URL prefix to the directory category its detail
// pages belong to.
type ContentPrefix struct {
	Prefix   string
	Category string
}

// ContentPrefixes is the full set of crawled URL prefixes. Species pages
// live under two prefixes because the site renamed the section.
var ContentPrefixes = []ContentPrefix{
	{"www.dndbeyond.com/spells/", "Spell"},
	{"www.dndbeyond.com/classes/", "Class"},
	{"www.dndbeyond.com/subclasses/", "Subclass"},
	{"www.dndbeyond.com/species/", "Species"},
	{"www.dndbeyond.com/races/", "Species"},
	{"www.dndbeyond.com/monsters/", "Monster"},
	{"www.dndbeyond.com/magic-items/", "Magic Item"},
	{"www.dndbeyond.com/equipment/", "Equipment"},
	{"www.dndbeyond.com/feats/", "Feat"},
	{"www.dndbeyond.com/backgrounds/", "Background"},
}

// PrefixesForCategories filters ContentPrefixes down to the named categories
// (case-insensitive). An empty filter keeps everything.
func PrefixesForCategories(names []string) ([]ContentPrefix, error) {
	if len(names) == 0 {
		return ContentPrefixes, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = true
	}

	var out []ContentPrefix
	for _, cp := range ContentPrefixes {
		if wanted[strings.ToLower(cp.Category)] {
			out = append(out, cp)
		}
	}
	if len(out) == 0 {
		known := make([]string, 0, len(ContentPrefixes))
		seen := make(map[string]bool)
		for _, cp := range ContentPrefixes {
			if !seen[cp.Category] {
				seen[cp.Category] = true
				known = append(known, cp.Category)
			}
		}
		sort.Strings(known)
		return nil, fmt.Errorf("no matching categories; known: %s", strings.Join(known, ", "))
	}
	return out, nil
}

// discovery pairs a candidate entry with the archive coordinates of the
// capture that produced it. The locator exists only to drive the body fetch
// and is dropped before anything is persisted.
type discovery struct {
	entry models.Entry
	loc   WARCLocator
}

// Stats summarizes one pipeline run.
type Stats struct {
	Discovered int // unique detail URLs found
	Homebrew   int // dropped as user-created content
	Unfetched  int // body unavailable, edition left unknown
}

// Pipeline discovers directory entries from historical crawl snapshots and
// classifies them from their archived page bodies.
//
// The run has two phases. Discovery walks crawls newest-first and collects
// one candidate per canonical URL (first capture seen wins, so the newest
// crawl provides the fetch coordinates). Classification then fetches each
// candidate's archived body to drop homebrew pages and tag the edition. The
// phases are separate so index pagination and archive fetches each keep
// their own request cadence.
type Pipeline struct {
	CDX      *CDXClient
	Fetcher  *WARCFetcher
	Prefixes []ContentPrefix

	Crawls    int  // number of recent crawls to search
	Limit     int  // max results per prefix per crawl, 0 = uncapped
	Workers   int  // concurrent body fetches
	SkipFetch bool // skip phase two; editions stay unknown, homebrew is not filtered
}

// Run executes the full discovery and classification pass and returns the
// candidate entries ready for upsert.
func (p *Pipeline) Run(ctx context.Context) ([]models.Entry, Stats, error) {
	var stats Stats

	crawlIDs, err := p.CDX.RecentCrawlIDs(ctx, p.Crawls)
	if err != nil {
		return nil, stats, fmt.Errorf("list crawls: %w", err)
	}
	logf("searching %d crawls: %v", len(crawlIDs), crawlIDs)

	seen := make(map[string]*discovery)

	for _, crawlID := range crawlIDs {
		for _, cp := range p.Prefixes {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}

			records, err := p.CDX.Query(ctx, crawlID, cp.Prefix, p.Limit)
			if err != nil {
				// one failed query must not kill the whole run
				logf("query %s %s: %v", crawlID, cp.Prefix, err)
				continue
			}

			added := 0
			for _, rec := range records {
				canonical, ok := CanonicalURL(rec.URL)
				if !ok {
					continue
				}
				if _, dup := seen[canonical]; dup {
					continue
				}
				seen[canonical] = &discovery{
					entry: models.Entry{
						Name:     NameFromURL(canonical),
						Category: cp.Category,
						URL:      canonical,
					},
					loc: rec.Locator(),
				}
				added++
			}
			logf("crawl %s %s: %d records, %d new", crawlID, cp.Category, len(records), added)
		}
	}
	stats.Discovered = len(seen)

	if p.SkipFetch {
		logf("skipping body fetches: editions stay unknown, homebrew filtering disabled")
	} else if err := p.classify(ctx, seen, &stats); err != nil {
		return nil, stats, err
	}

	entries := make([]models.Entry, 0, len(seen))
	for _, d := range seen {
		entries = append(entries, d.entry)
	}
	return entries, stats, nil
}

// classify fetches each candidate's archived body with a bounded worker pool
// and updates the discovery map in place: homebrew candidates are removed,
// everything else gets its edition tagged.
func (p *Pipeline) classify(ctx context.Context, seen map[string]*discovery, stats *Stats) error {
	total := len(seen)
	logf("fetching archived bodies for %d entries", total)

	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}

	// snapshot the map up front: workers mutate it, so neither ranging nor
	// reading it may happen concurrently with them
	type unit struct {
		url string
		d   *discovery
	}
	units := make([]unit, 0, total)
	for url, d := range seen {
		units = append(units, unit{url, d})
	}
	sort.Slice(units, func(i, j int) bool { return units[i].url < units[j].url })

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, u := range units {
		url, d := u.url, u.d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			html, ok := p.Fetcher.Fetch(gctx, url, d.loc)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case !ok:
				stats.Unfetched++
			case IsHomebrew(html):
				delete(seen, url)
				stats.Homebrew++
			default:
				d.entry.Edition = DetectEdition(html)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if stats.Homebrew > 0 {
		logf("filtered %d homebrew entries", stats.Homebrew)
	}
	if stats.Unfetched > 0 {
		logf("%d entries had no fetchable body, edition left unknown", stats.Unfetched)
	}
	return nil
}
