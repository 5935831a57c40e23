package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"feedback-backend/internal/identity"

	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	identity identity.Provider
	validate *validator.Validate
}

func NewAuthHandler(idp identity.Provider) *AuthHandler {
	return &AuthHandler{
		identity: idp,
		validate: validator.New(),
	}
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- POST /auth/signin ---

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid email and password are required"})
		return
	}

	session, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		log.Printf("Error signing in %s: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, session)
}
