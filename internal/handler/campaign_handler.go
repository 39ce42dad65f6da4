package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/auth"
	"github.com/pulsekit/smsdash/internal/dto"
	"github.com/pulsekit/smsdash/internal/repository"
	"github.com/pulsekit/smsdash/internal/service"
)

type CampaignHandler struct {
	Service *service.CampaignService
	Logger  *zap.Logger
}

// List handles GET /api/campaigns. Query params: status, search,
// dateFrom, dateTo, limit, offset, orderBy, ascending.
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	filters, err := parseCampaignFilters(r)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	campaigns, err := h.Service.List(r.Context(), session.UserID, filters)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	payloads := make([]dto.CampaignPayload, len(campaigns))
	for i, c := range campaigns {
		payloads[i] = dto.CampaignFromModel(c)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    payloads,
		"count":   len(payloads),
	})
}

// Create handles POST /api/campaigns.
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var body struct {
		Name        string  `json:"name"`
		MessageBody string  `json:"message_body"`
		ScheduledAt *string `json:"scheduled_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	campaign, err := h.Service.Create(r.Context(), session.UserID, service.CreateInput{
		Name:        body.Name,
		MessageBody: body.MessageBody,
		ScheduledAt: body.ScheduledAt,
	})
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    dto.CampaignFromModel(*campaign),
		"message": "campaign created",
	})
}

// Get handles GET /api/campaigns/{id} and includes delivery stats.
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	details, err := h.Service.Details(r.Context(), session.UserID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    dto.CampaignFromModel(details.Campaign),
		"stats":   details.Stats,
	})
}

// Messages handles GET /api/campaigns/{id}/messages.
func (h *CampaignHandler) Messages(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	messages, err := h.Service.Messages(r.Context(), session.UserID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	payloads := make([]dto.MessagePayload, len(messages))
	for i, m := range messages {
		payloads[i] = dto.MessageFromModel(m)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    payloads,
	})
}

// Send handles POST /api/campaigns/{id}/send.
func (h *CampaignHandler) Send(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	result, err := h.Service.Send(r.Context(), session.UserID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"campaign_id":     result.CampaignID,
		"messages_queued": result.MessagesQueued,
		"status":          result.Status,
	})
}

// Preview handles POST /api/campaigns/{id}/preview.
func (h *CampaignHandler) Preview(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var body struct {
		CustomerID string `json:"customer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	rendered, err := h.Service.Preview(r.Context(), session.UserID, chi.URLParam(r, "id"), body.CustomerID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"rendered_message": rendered,
		"customer_id":      body.CustomerID,
	})
}

// parseCampaignFilters translates list query parameters. ascending uses
// the string "true"; anything else (or absence) means descending.
func parseCampaignFilters(r *http.Request) (repository.CampaignFilters, error) {
	q := r.URL.Query()
	f := repository.CampaignFilters{
		Status:    q.Get("status"),
		Search:    q.Get("search"),
		OrderBy:   q.Get("orderBy"),
		Ascending: q.Get("ascending") == "true",
	}

	if v := q.Get("dateFrom"); v != "" {
		t, err := parseQueryTime(v)
		if err != nil {
			return f, err
		}
		f.DateFrom = &t
	}
	if v := q.Get("dateTo"); v != "" {
		t, err := parseQueryTime(v)
		if err != nil {
			return f, err
		}
		f.DateTo = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errBadQueryParam("limit")
		}
		f.Limit = &n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errBadQueryParam("offset")
		}
		f.Offset = &n
	}
	return f, nil
}
