package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maren/memoir-builder/internal/db"
	"github.com/maren/memoir-builder/internal/types"
)

// handleRegister creates a new user account and returns a token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	hash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user, err := s.users.CreateUser(r.Context(), req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			s.errorResponse(w, http.StatusConflict, "Email already registered")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.LoginResponse{
		User:  apiUser(user),
		Token: token,
	})
}

// handleLogin verifies credentials and returns a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		s.errorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.LoginResponse{
		User:  apiUser(user),
		Token: token,
	})
}

func apiUser(user *db.User) *types.User {
	return &types.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
