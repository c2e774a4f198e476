package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/phisoli/parasekreterim/internal/storage"
)

// resetTokenMaxAge bounds how long a password reset link stays valid.
const resetTokenMaxAge = time.Hour

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Balance   string `json:"balance"`
	SetupDone bool   `json:"setup_done"`
}

func toUserResponse(u storage.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Balance:   u.Balance.StringFixed(2),
		SetupDone: u.SetupDone,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "email, username and a password of at least 8 characters are required")
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := s.users.CreateUser(r.Context(), req.Email, req.Username, hash)
	if err != nil {
		// Unique constraints on email and username surface here.
		s.logger.WarnContext(r.Context(), "Registration failed", "error", err)
		writeError(w, http.StatusConflict, "email or username already taken")
		return
	}

	token, err := s.auth.IssueToken(user.ID, user.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		User  userResponse `json:"user"`
		Token string       `json:"token"`
	}{toUserResponse(user), token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := s.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.auth.IssueToken(user.ID, user.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Always answer 200 so the endpoint cannot be used to enumerate accounts.
	user, err := s.users.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.ErrorContext(r.Context(), "Forgot-password lookup failed", "error", err)
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	token, err := s.users.CreateResetToken(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create reset token", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	// Without a mailer wired to this endpoint the token is logged for
	// operators to relay manually.
	s.logger.InfoContext(r.Context(), "Password reset token issued",
		"user_id", user.ID, "token", token)

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	uid, err := s.users.ConsumeResetToken(r.Context(), req.Token, resetTokenMaxAge)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or expired reset token")
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := s.users.UpdatePassword(r.Context(), uid, hash); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUserByID(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// handleSetup finishes account onboarding once: it sets the starting
// balance and seeds the default categories.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InitialBalance string `json:"initial_balance"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	balance, ok := parseAmountField(w, "initial_balance", req.InitialBalance)
	if !ok {
		return
	}
	if balance.IsNegative() {
		writeError(w, http.StatusBadRequest, "initial_balance must not be negative")
		return
	}

	user, err := s.users.CompleteSetup(r.Context(), userID(r), balance)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
