// Package domain contains the core business entities for the PageTurn book review service.
package domain

// Book represents a catalog entry, keyed by its ISBN-10.
type Book struct {
	ISBN   string `json:"isbn"`
	ISBN13 string `json:"isbn13,omitempty"` // Empty until the backfill job derives it
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
}

// HasISBN13 returns true if the thirteen-digit identifier has been backfilled.
func (b *Book) HasISBN13() bool {
	return b.ISBN13 != ""
}
