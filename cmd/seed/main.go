// Package main provides a tool to import a book catalog from a CSV file.
//
// The file format matches the classic books.csv layout: one header line,
// then isbn,title,author,year per row.
//
// Usage:
//
//	DATABASE_URL=file:pageturn.db go run ./cmd/seed -csv books.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/service"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

var csvPath = flag.String("csv", "books.csv", "Path to the catalog CSV file")

func main() {
	flag.Parse()

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

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *csvPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 4

	// Skip the header row.
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read CSV header: %v", err)
	}

	ctx := context.Background()
	imported, skipped := 0, 0

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read CSV at line %d: %v", line, err)
		}

		year, err := strconv.Atoi(record[3])
		if err != nil {
			log.Printf("Skipping line %d: bad year %q", line, record[3])
			skipped++
			continue
		}

		book := &domain.Book{
			ISBN:   record[0],
			Title:  record[1],
			Author: record[2],
			Year:   year,
		}

		if err := catalog.ImportBook(ctx, book); err != nil {
			if domainerrors.Is(err, domainerrors.ErrValidation) {
				log.Printf("Skipping line %d (%s): %v", line, book.ISBN, err)
				skipped++
				continue
			}
			log.Fatalf("Failed to import %s at line %d: %v", book.ISBN, line, err)
		}
		imported++
	}

	fmt.Printf("Imported %d books (%d skipped)\n", imported, skipped)
}
