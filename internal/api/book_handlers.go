package api

import (
	"github.com/go-json-experiment/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// === DTOs ===

// SearchRequest is the request body for POST /search.
type SearchRequest struct {
	Query string `json:"q"`
}

// ReviewRequest is the request body for review submission. Rating is a
// pointer so "no rating selected" survives decoding.
type ReviewRequest struct {
	Rating *int   `json:"rating"`
	Body   string `json:"review"`
}

// lookupError is the public lookup failure payload. Its exact shape is an
// API contract.
type lookupError struct {
	Error string `json:"error"`
}

// === Handlers ===

// handleHome returns the landing payload for the signed-in user.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	response.Success(w, map[string]string{
		"username": user.Username,
	}, s.logger)
}

// handleSearch finds books matching the query. The term arrives as ?q= on
// GET or as a JSON body on POST.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" && r.Method == http.MethodPost {
		var req SearchRequest
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
		term = req.Query
	}

	books, err := s.catalog.Search(r.Context(), term)
	if err != nil {
		s.logger.Error("Failed to search books", "error", err, "term", term)
		response.InternalError(w, "Failed to search books", s.logger)
		return
	}

	response.Success(w, map[string]any{
		"query": term,
		"books": books,
	}, s.logger)
}

// handleGetBook returns the book page data: the book, its reviews, and
// rating statistics.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	if isbn == "" {
		response.BadRequest(w, "ISBN is required", s.logger)
		return
	}

	detail, err := s.reviews.GetBookDetail(r.Context(), isbn)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, detail, s.logger)
}

// handleSubmitReview records a review from the signed-in user.
func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	if isbn == "" {
		response.BadRequest(w, "ISBN is required", s.logger)
		return
	}

	var req ReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user := currentUser(r.Context())
	review, err := s.reviews.Submit(r.Context(), service.SubmitRequest{
		ISBN:   isbn,
		UserID: user.ID,
		Rating: req.Rating,
		Body:   req.Body,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, review, s.logger)
}

// handleLookup serves the public book lookup. Unlike the rest of the
// surface, both the success and failure payloads are unenveloped; their
// shapes are fixed contracts with external consumers.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")

	lookup, err := s.reviews.GetLookup(r.Context(), isbn)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			response.Raw(w, http.StatusNotFound, lookupError{Error: "Invalid ISBN"}, s.logger)
			return
		}
		s.logger.Error("Failed to look up book", "error", err, "isbn", isbn)
		response.InternalError(w, "Failed to look up book", s.logger)
		return
	}

	response.Raw(w, http.StatusOK, lookup, s.logger)
}
