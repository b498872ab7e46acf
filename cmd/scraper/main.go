package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"lorevault/internal/scraper"
	"lorevault/pkg/database"
)

func main() {
	var (
		limit      = flag.Int("limit", 0, "max results per category per crawl (0 = uncapped)")
		crawls     = flag.Int("crawls", 10, "number of recent crawls to search")
		workers    = flag.Int("workers", 4, "concurrent archive body fetches")
		categories = flag.String("categories", "", "comma-separated category filter (e.g. Class,Species)")
		dryRun     = flag.Bool("dry-run", false, "print discovered entries without touching the database")
		skipWARC   = flag.Bool("skip-warc", false, "skip archive body fetches; editions stay unknown and homebrew filtering is disabled")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var filter []string
	if *categories != "" {
		filter = strings.Split(*categories, ",")
	}
	prefixes, err := scraper.PrefixesForCategories(filter)
	if err != nil {
		log.Fatalf("categories: %v", err)
	}

	p := &scraper.Pipeline{
		CDX:       scraper.NewCDXClient(),
		Fetcher:   scraper.NewWARCFetcher(),
		Prefixes:  prefixes,
		Crawls:    *crawls,
		Limit:     *limit,
		Workers:   *workers,
		SkipFetch: *skipWARC,
	}

	entries, stats, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("scrape failed: %v", err)
	}
	log.Printf("discovered %d entries (%d homebrew dropped, %d without body)",
		stats.Discovered, stats.Homebrew, stats.Unfetched)

	if *dryRun {
		show := len(entries)
		if show > 20 {
			show = 20
		}
		for _, e := range entries[:show] {
			label := ""
			if e.Edition != "" {
				label = " [" + string(e.Edition) + "]"
			}
			log.Printf("  [%s]%s %s -> %s", e.Category, label, e.Name, e.URL)
		}
		if len(entries) > 20 {
			log.Printf("  ... and %d more", len(entries)-20)
		}
		return
	}

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	affected, err := scraper.SaveToDatabase(ctx, db, entries)
	if err != nil {
		log.Fatalf("save failed: %v", err)
	}
	log.Printf("done, %d rows affected", affected)
}
