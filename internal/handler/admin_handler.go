package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/auth"
	"github.com/pulsekit/smsdash/internal/dto"
	"github.com/pulsekit/smsdash/internal/service"
)

type AdminHandler struct {
	Service *service.AdminService
	Logger  *zap.Logger
}

// PendingUsers handles GET /api/admin/users/pending.
func (h *AdminHandler) PendingUsers(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Service.PendingUsers(r.Context())
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	payloads := make([]dto.ProfilePayload, len(pending))
	for i, p := range pending {
		payloads[i] = dto.ProfileFromModel(p)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"pending_users": payloads,
		"count":         len(payloads),
	})
}

// BatchUpdate handles PATCH /api/admin/users/batch.
func (h *AdminHandler) BatchUpdate(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var body struct {
		UserIDs []string `json:"user_ids"`
		Action  string   `json:"action"`
		Role    string   `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updated, err := h.Service.BatchUpdateUsers(r.Context(), session.UserID, body.UserIDs, body.Action, body.Role)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	payloads := make([]dto.ProfilePayload, len(updated))
	for i, p := range updated {
		payloads[i] = dto.ProfileFromModel(p)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"updated_users": payloads,
		"count":         len(payloads),
		"message":       fmt.Sprintf("%s applied to %d users", body.Action, len(payloads)),
	})
}

// RejectUser handles POST /api/admin/users/reject.
func (h *AdminHandler) RejectUser(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	profile, err := h.Service.RejectUser(r.Context(), session.UserID, body.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "user rejected",
		"profile": dto.ProfileFromModel(*profile),
	})
}

// CreateInvite handles POST /api/admin/invites.
func (h *AdminHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var body struct {
		ValidForHours int `json:"valid_for_hours"`
	}
	// Body is optional; a missing or empty body means the default TTL.
	_ = json.NewDecoder(r.Body).Decode(&body)

	invite, err := h.Service.CreateInvite(r.Context(), session.UserID, time.Duration(body.ValidForHours)*time.Hour)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"invite":  invite,
	})
}

// SystemHealth handles GET /api/admin/system/health.
func (h *AdminHandler) SystemHealth(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Service.SystemHealth(r.Context())
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}
