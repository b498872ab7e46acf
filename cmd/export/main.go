package main

import (
	"context"
	"flag"
	"log"
	"time"

	"lorevault/internal/entries"
	"lorevault/internal/publish"
	"lorevault/pkg/database"
	"lorevault/pkg/models"
)

func main() {
	var (
		overridesPath = flag.String("overrides", "data/overrides.csv", "path to the correction list CSV")
		outPath       = flag.String("out", "public/entries.json", "output path for the published JSON")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := entries.NewRepo(db)
	stored, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("load entries failed: %v", err)
	}
	log.Printf("loaded %d entries from store", len(stored))

	overrides, err := publish.LoadOverrides(*overridesPath)
	if err != nil {
		log.Fatalf("load overrides failed: %v", err)
	}
	log.Printf("loaded %d overrides from %s", len(overrides), *overridesPath)

	base := make([]models.Entry, 0, len(stored))
	for _, e := range stored {
		base = append(base, e.Canonical())
	}

	merged := publish.Apply(base, overrides)
	log.Printf("%d entries after applying overrides", len(merged))

	if err := publish.WriteJSON(*outPath, merged); err != nil {
		log.Fatalf("write output failed: %v", err)
	}
	log.Printf("written to %s", *outPath)
}
