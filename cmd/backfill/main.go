// Package main provides the offline ISBN-13 backfill job.
//
// For every book without an ISBN-13, it derives one from the ISBN-10
// (978 prefix plus a recomputed check digit) and stores it. Safe to re-run;
// already-backfilled books are not touched.
//
// Usage:
//
//	DATABASE_URL=file:pageturn.db go run ./cmd/backfill
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/pageturnapp/pageturn-server/internal/isbn"
	"github.com/pageturnapp/pageturn-server/internal/service"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := sqlite.Open(databaseURL, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	catalog := service.NewCatalogService(s, logger)
	ctx := context.Background()

	books, err := catalog.ListMissingISBN13(ctx)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}

	updated, failed := 0, 0
	for _, book := range books {
		isbn13, err := isbn.To13(book.ISBN)
		if err != nil {
			log.Printf("Skipping %s: %v", book.ISBN, err)
			failed++
			continue
		}

		if err := catalog.UpdateISBN13(ctx, book.ISBN, isbn13); err != nil {
			log.Printf("Failed to update %s: %v", book.ISBN, err)
			failed++
			continue
		}
		updated++
	}

	fmt.Printf("Backfilled %d of %d books (%d failed)\n", updated, len(books), failed)
}
