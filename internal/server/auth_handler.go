package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/store"
	"github.com/jonathan/form-autofill/internal/types"
)

// tokenIssuer is the part of JWTService the auth handler needs.
type tokenIssuer interface {
	GenerateToken(userID uuid.UUID) (string, error)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	users     store.UserStore
	passwords *config.PasswordConfig
	tokens    tokenIssuer
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users store.UserStore, passwords *config.PasswordConfig, tokens tokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, passwords: passwords, tokens: tokens}
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	hash, err := h.passwords.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, hash)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			errorResponse(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, fmt.Errorf("failed to create user: %w", err))
		return
	}
	log.Printf("[AUTH] registered user %s", user.ID)

	h.respondWithToken(w, http.StatusCreated, user)
}

// Login exchanges credentials for a token. Unknown emails and wrong passwords
// produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, fmt.Errorf("failed to look up user: %w", err))
		return
	}
	if user == nil || !h.passwords.VerifyPassword(req.Password, user.PasswordHash) {
		writeError(w, &ErrInvalidCredentials{})
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *store.User) {
	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, status, types.LoginResponse{User: user.Public(), Token: token})
}
