package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/auth"
	"github.com/pulsekit/smsdash/internal/dto"
	"github.com/pulsekit/smsdash/internal/service"
)

type AuthHandler struct {
	Service    *service.AuthService
	Logger     *zap.Logger
	SessionTTL time.Duration
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		InviteCode string `json:"invite_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	profile, err := h.Service.Signup(r.Context(), service.SignupInput{
		Email:      body.Email,
		Password:   body.Password,
		InviteCode: body.InviteCode,
	})
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"profile": dto.ProfileFromModel(*profile),
		"message": "account created, awaiting approval",
	})
}

// Login handles POST /api/auth/login. The token is set as a cookie for
// page navigation and returned in the body for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	profile, token, err := h.Service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"profile": dto.ProfileFromModel(*profile),
	})
}

// Logout handles GET and POST /api/auth/logout. Tokens are stateless, so
// logout just clears the cookie; the token itself lapses at expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	profile, err := h.Service.Me(r.Context(), session.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	payload := dto.ProfileFromModel(*profile)
	respondJSON(w, http.StatusOK, map[string]any{
		"user":    map[string]string{"id": profile.UserID, "email": profile.Email},
		"profile": payload,
		"role":    payload.Role,
	})
}
