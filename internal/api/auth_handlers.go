package api

import (
	"github.com/go-json-experiment/json"
	"net/http"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// === DTOs ===

// LoginRequest is the request body for user login.
type LoginRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// UserResponse contains user information in auth responses.
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	WantsUpdates bool      `json:"wants_updates"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// AuthResponse contains the session token and user info.
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      UserResponse `json:"user"`
}

func mapUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		WantsUpdates: user.WantsUpdates,
		CreatedAt:    user.CreatedAt,
		LastLoginAt:  user.LastLoginAt,
	}
}

// === Handlers ===

// handleRegisterForm describes the registration fields for the front end.
func (s *Server) handleRegisterForm(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]any{
		"fields":              []string{"email", "username", "password", "password_confirm", "wants_updates"},
		"username_max_length": domain.MaxUsernameLength,
	}, s.logger)
}

// handleRegister creates a new user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, err := s.users.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, mapUserResponse(user), s.logger)
}

// handleLoginForm describes the login fields for the front end.
func (s *Server) handleLoginForm(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]any{
		"fields": []string{"identifier", "password"},
	}, s.logger)
}

// handleLogin authenticates a user and establishes a session. The token
// comes back both in the response body (for Bearer clients) and as the
// session cookie (for browsers).
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, token, err := s.sessions.Login(r.Context(), req.Identifier, req.Password, clientIP(r))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		User:      mapUserResponse(user),
	}, s.logger)
}

// handleLogout destroys the session and clears the cookie. Always lands the
// caller back at /login, even if the token was already dead.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := extractToken(r)

	if err := s.sessions.Logout(r.Context(), token); err != nil {
		s.logger.Error("Failed to log out session", "error", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
