package sqlite

import (
	"context"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// CreateReview inserts a new review. Each submission is its own row; the
// schema's foreign keys require the user and book to exist.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (review_id, user_id, isbn, rating, review, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.UserID,
		review.ISBN,
		review.Rating,
		review.Body,
		formatTime(review.CreatedAt),
	)
	return err
}

// ListReviewsByBook returns a book's reviews joined with reviewer usernames,
// newest first.
func (s *Store) ListReviewsByBook(ctx context.Context, isbn string) ([]*domain.ReviewWithUser, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.review_id, r.user_id, r.isbn, r.rating, r.review, r.created_at, u.username
		FROM reviews r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.isbn = ?
		ORDER BY r.created_at DESC`, isbn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.ReviewWithUser
	for rows.Next() {
		var rv domain.ReviewWithUser
		var createdAt string

		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ISBN, &rv.Rating, &rv.Body, &createdAt, &rv.Username); err != nil {
			return nil, err
		}

		rv.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}

		reviews = append(reviews, &rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AggregateReviews computes the review count and mean rating for a book.
// A book with no reviews yields {0, 0}; the zero-count branch is explicit
// rather than relying on SQL NULL semantics.
func (s *Store) AggregateReviews(ctx context.Context, isbn string) (*domain.RatingSummary, error) {
	var summary domain.RatingSummary
	var total int

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(rating), 0) FROM reviews WHERE isbn = ?`, isbn)
	if err := row.Scan(&summary.Count, &total); err != nil {
		return nil, err
	}

	if summary.Count == 0 {
		summary.Average = 0
		return &summary, nil
	}

	summary.Average = float64(total) / float64(summary.Count)
	return &summary, nil
}
