package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// BookStore is the persistence surface the catalog needs.
type BookStore interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, isbn string) (*domain.Book, error)
	SearchBooks(ctx context.Context, term string) ([]*domain.Book, error)
	UpdateBookISBN13(ctx context.Context, isbn, isbn13 string) error
	ListBooksMissingISBN13(ctx context.Context) ([]*domain.Book, error)
}

// CatalogService answers lookups and searches over the book catalog.
type CatalogService struct {
	store  BookStore
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store BookStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// GetBook fetches a single book by its ISBN-10.
func (s *CatalogService) GetBook(ctx context.Context, isbn string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, isbn)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("no book with ISBN %s", isbn)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// Search finds books whose ISBN, title, or author contains the term,
// case-insensitively. A blank term matches nothing rather than everything.
func (s *CatalogService) Search(ctx context.Context, term string) ([]*domain.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []*domain.Book{}, nil
	}

	books, err := s.store.SearchBooks(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// ImportBook adds a book to the catalog. Used by the seed tool.
func (s *CatalogService) ImportBook(ctx context.Context, book *domain.Book) error {
	if book.ISBN == "" || book.Title == "" || book.Author == "" {
		return domainerrors.Validation("book requires an ISBN, title, and author")
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.Validationf("book %s already exists", book.ISBN)
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// UpdateISBN13 records the derived ISBN-13 for a book.
func (s *CatalogService) UpdateISBN13(ctx context.Context, isbn, isbn13 string) error {
	if err := s.store.UpdateBookISBN13(ctx, isbn, isbn13); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("no book with ISBN %s", isbn)
		}
		return fmt.Errorf("update isbn13: %w", err)
	}
	return nil
}

// ListMissingISBN13 returns books that still need an ISBN-13. Used by the
// backfill tool.
func (s *CatalogService) ListMissingISBN13(ctx context.Context) ([]*domain.Book, error) {
	return s.store.ListBooksMissingISBN13(ctx)
}
