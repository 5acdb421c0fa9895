package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `isbn, isbn13, title, author, year`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book
	var isbn13 sql.NullString

	err := scanner.Scan(
		&b.ISBN,
		&isbn13,
		&b.Title,
		&b.Author,
		&b.Year,
	)
	if err != nil {
		return nil, err
	}

	if isbn13.Valid {
		b.ISBN13 = isbn13.String
	}

	return &b, nil
}

// CreateBook inserts a new book into the catalog.
// Returns store.ErrAlreadyExists if the ISBN is already present.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (isbn, isbn13, title, author, year)
		VALUES (?, ?, ?, ?, ?)`,
		book.ISBN,
		nullString(book.ISBN13),
		book.Title,
		book.Author,
		book.Year,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ISBN-10.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, isbn string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// escapeLike escapes LIKE metacharacters so a search term matches literally.
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

// SearchBooks returns books whose isbn, title, or author contains the term,
// case-insensitively. The term is always a bound parameter; it can never
// alter query semantics.
func (s *Store) SearchBooks(ctx context.Context, term string) ([]*domain.Book, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE LOWER(isbn) LIKE ? ESCAPE '\'
		   OR LOWER(title) LIKE ? ESCAPE '\'
		   OR LOWER(author) LIKE ? ESCAPE '\'
		ORDER BY title ASC`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBookISBN13 sets the thirteen-digit identifier for a book.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBookISBN13(ctx context.Context, isbn, isbn13 string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET isbn13 = ? WHERE isbn = ?`,
		nullString(isbn13), isbn)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListBooksMissingISBN13 returns books whose isbn13 has not been backfilled.
func (s *Store) ListBooksMissingISBN13(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn13 IS NULL OR isbn13 = '' ORDER BY isbn ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}
