package api

import (
	"bytes"
	"context"
	"github.com/go-json-experiment/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/service"
	"github.com/pageturnapp/pageturn-server/internal/store/sqlite"
)

// newTestServer builds a server over temporary storage with one book seeded.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open("file:"+dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	users := service.NewUserService(s, logger)
	sessions := service.NewSessionService(s, users, time.Hour, logger)
	catalog := service.NewCatalogService(s, logger)
	reviews := service.NewReviewService(s, catalog, nil, logger)

	require.NoError(t, catalog.ImportBook(context.Background(), &domain.Book{
		ISBN:   "0380795272",
		Title:  "Krondor: The Betrayal",
		Author: "Raymond E. Feist",
		Year:   1998,
	}))

	return NewServer(users, sessions, catalog, reviews, logger)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// registerAndLogin creates a user and returns a live session token.
func registerAndLogin(t *testing.T, srv *Server) string {
	t.Helper()

	w := doJSON(t, srv, http.MethodPost, "/register", map[string]any{
		"email":            "alice@example.com",
		"username":         "alice",
		"password":         "correct horse battery staple",
		"password_confirm": "correct horse battery staple",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, srv, http.MethodPost, "/login", map[string]string{
		"identifier": "alice",
		"password":   "correct horse battery staple",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.Token)
	return env.Data.Token
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	srv := newTestServer(t)

	body := map[string]any{
		"email":            "alice@example.com",
		"username":         "alice",
		"password":         "correct horse battery staple",
		"password_confirm": "correct horse battery staple",
	}
	w := doJSON(t, srv, http.MethodPost, "/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code)

	body["email"] = "alice2@example.com"
	w = doJSON(t, srv, http.MethodPost, "/register", body, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Error, "username")
}

func TestRegister_InvalidUsername(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/register", map[string]any{
		"email":            "alice@example.com",
		"username":         "alice@home",
		"password":         "pw",
		"password_confirm": "pw",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_BadPassword(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/login", map[string]string{
		"identifier": "alice",
		"password":   "wrong",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/register", map[string]any{
		"email":            "alice@example.com",
		"username":         "alice",
		"password":         "correct horse battery staple",
		"password_confirm": "correct horse battery staple",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/login", map[string]string{
		"identifier": "alice@example.com",
		"password":   "correct horse battery staple",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestProtectedRoutes_RedirectWithoutSession(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/", "/search", "/book/0380795272"} {
		w := doJSON(t, srv, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestProtectedRoutes_BearerGets401(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/", nil, "bogus-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestHome(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/", nil, token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/search?q=krondor", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Krondor: The Betrayal")

	w = doJSON(t, srv, http.MethodPost, "/search", SearchRequest{Query: "feist"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Raymond E. Feist")

	w = doJSON(t, srv, http.MethodGet, "/search?q=zzzz", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Krondor")
}

func TestGetBook(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/book/0380795272", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Krondor: The Betrayal")

	w = doJSON(t, srv, http.MethodGet, "/book/0000000000", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitReview(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	rating := 4
	w := doJSON(t, srv, http.MethodPost, "/book/0380795272", ReviewRequest{
		Rating: &rating,
		Body:   "A fine return to Midkemia.",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, srv, http.MethodGet, "/book/0380795272", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A fine return to Midkemia.")
	assert.Contains(t, w.Body.String(), "alice")
}

func TestSubmitReview_MissingFields(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/book/0380795272", ReviewRequest{
		Body: "no rating",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	rating := 3
	w = doJSON(t, srv, http.MethodPost, "/book/0380795272", ReviewRequest{
		Rating: &rating,
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookup(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	rating := 4
	w := doJSON(t, srv, http.MethodPost, "/book/0380795272", ReviewRequest{
		Rating: &rating,
		Body:   "solid",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	// Lookup is public: no token needed, payload is unenveloped.
	w = doJSON(t, srv, http.MethodGet, "/api/0380795272", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var lookup service.BookLookup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lookup))
	assert.Equal(t, "Krondor: The Betrayal", lookup.Title)
	assert.Equal(t, "Raymond E. Feist", lookup.Author)
	assert.Equal(t, 1998, lookup.Year)
	assert.Equal(t, "0380795272", lookup.ISBN)
	assert.Equal(t, 1, lookup.ReviewCount)
	assert.InDelta(t, 4.0, lookup.AverageScore, 0.0001)
	assert.NotContains(t, w.Body.String(), "success")
}

func TestLookup_UnknownISBN(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/0000000000", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Invalid ISBN"}`, w.Body.String())
}

func TestLogout_RevokesSession(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/logout", nil, token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = doJSON(t, srv, http.MethodGet, "/", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRateLimit(t *testing.T) {
	srv := newTestServer(t)

	// Burst is 5 per IP; hammer past it.
	var lastCode int
	for i := 0; i < 10; i++ {
		w := doJSON(t, srv, http.MethodPost, "/login", map[string]string{
			"identifier": "nobody",
			"password":   "wrong",
		}, "")
		lastCode = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
