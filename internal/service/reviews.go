package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/ratings"
)

// ReviewStore is the persistence surface review handling needs.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	ListReviewsByBook(ctx context.Context, isbn string) ([]*domain.ReviewWithUser, error)
	AggregateReviews(ctx context.Context, isbn string) (*domain.RatingSummary, error)
}

// StatsFetcher fetches community rating statistics from an external source.
type StatsFetcher interface {
	FetchStats(ctx context.Context, isbn13 string) (*ratings.Stats, error)
}

// BookDetail is everything the book page shows: the book itself, its local
// reviews, and community statistics when the external source can supply them.
type BookDetail struct {
	Book           *domain.Book             `json:"book"`
	Reviews        []*domain.ReviewWithUser `json:"reviews"`
	LocalStats     *domain.RatingSummary    `json:"local_stats"`
	CommunityStats *ratings.Stats           `json:"community_stats,omitempty"`
}

// ReviewService handles review submission and book detail assembly.
type ReviewService struct {
	store   ReviewStore
	catalog *CatalogService
	stats   StatsFetcher // nil when no external source is configured
	logger  *slog.Logger
}

// NewReviewService creates a new review service. stats may be nil, in which
// case book details carry local data only.
func NewReviewService(store ReviewStore, catalog *CatalogService, stats StatsFetcher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:   store,
		catalog: catalog,
		stats:   stats,
		logger:  logger,
	}
}

// SubmitRequest carries a new review. Rating is a pointer so an absent rating
// is distinguishable from a rating of zero.
type SubmitRequest struct {
	ISBN   string
	UserID string
	Rating *int
	Body   string
}

// Submit records a review for a book. Both a rating and review text are
// required; the rating must fall within the allowed range. A user may review
// the same book more than once.
func (s *ReviewService) Submit(ctx context.Context, req SubmitRequest) (*domain.Review, error) {
	if req.Rating == nil {
		return nil, domainerrors.MissingRating("you must select a rating")
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, domainerrors.MissingBody("you must write a review")
	}
	if *req.Rating < domain.MinRating || *req.Rating > domain.MaxRating {
		return nil, domainerrors.Validationf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	// The book must exist before a review can reference it.
	if _, err := s.catalog.GetBook(ctx, req.ISBN); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate("rev")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := domain.NewReview(reviewID, req.UserID, req.ISBN, *req.Rating, req.Body)
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review submitted",
		"review_id", review.ID,
		"user_id", req.UserID,
		"isbn", req.ISBN,
		"rating", *req.Rating,
	)

	return review, nil
}

// ListByBook returns a book's reviews, newest first, with reviewer usernames.
func (s *ReviewService) ListByBook(ctx context.Context, isbn string) ([]*domain.ReviewWithUser, error) {
	reviews, err := s.store.ListReviewsByBook(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Aggregate computes the local review count and average rating for a book.
// A book with no reviews aggregates to a zero count and zero average.
func (s *ReviewService) Aggregate(ctx context.Context, isbn string) (*domain.RatingSummary, error) {
	summary, err := s.store.AggregateReviews(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	return summary, nil
}

// GetBookDetail assembles the book page: the book, its reviews, and community
// statistics from the external source when available. External failures are
// logged and the page renders from local data alone; a missing book is the
// only error.
func (s *ReviewService) GetBookDetail(ctx context.Context, isbn string) (*BookDetail, error) {
	book, err := s.catalog.GetBook(ctx, isbn)
	if err != nil {
		return nil, err
	}

	reviews, err := s.ListByBook(ctx, isbn)
	if err != nil {
		return nil, err
	}

	summary, err := s.Aggregate(ctx, isbn)
	if err != nil {
		return nil, err
	}

	detail := &BookDetail{
		Book:       book,
		Reviews:    reviews,
		LocalStats: summary,
	}

	if s.stats != nil && book.HasISBN13() {
		stats, err := s.stats.FetchStats(ctx, book.ISBN13)
		if err != nil {
			s.logger.Warn("community stats unavailable",
				"isbn", isbn,
				"error", err,
			)
		} else {
			detail.CommunityStats = stats
		}
	}

	return detail, nil
}

// GetLookup builds the public lookup payload for a book: its bibliographic
// fields plus the local review count and average score.
func (s *ReviewService) GetLookup(ctx context.Context, isbn string) (*BookLookup, error) {
	book, err := s.catalog.GetBook(ctx, isbn)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Invalid ISBN")
		}
		return nil, err
	}

	summary, err := s.Aggregate(ctx, isbn)
	if err != nil {
		return nil, err
	}

	return &BookLookup{
		Title:        book.Title,
		Author:       book.Author,
		Year:         book.Year,
		ISBN:         book.ISBN,
		ReviewCount:  summary.Count,
		AverageScore: summary.Average,
	}, nil
}

// BookLookup is the public lookup payload. Field order and names are part of
// the API contract.
type BookLookup struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Year         int     `json:"year"`
	ISBN         string  `json:"isbn"`
	ReviewCount  int     `json:"review_count"`
	AverageScore float64 `json:"average_score"`
}
