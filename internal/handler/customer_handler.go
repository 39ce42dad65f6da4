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

type CustomerHandler struct {
	Service *service.CustomerService
	Logger  *zap.Logger
	Now     func() time.Time
}

// List handles GET /api/customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	customers, err := h.Service.List(r.Context(), session.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	payloads := make([]dto.CustomerPayload, len(customers))
	for i, c := range customers {
		payloads[i] = dto.CustomerFromModel(c)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    payloads,
		"count":   len(payloads),
	})
}

// Create handles POST /api/customers.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())

	var body struct {
		Phone     string `json:"phone"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Company   string `json:"company"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	customer, err := h.Service.Create(r.Context(), session.UserID, service.CustomerInput{
		Phone:     body.Phone,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Company:   body.Company,
	})
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    dto.CustomerFromModel(*customer),
	})
}

// Template handles GET /api/customers/template: the CSV import template
// as a file download.
func (h *CustomerHandler) Template(w http.ResponseWriter, r *http.Request) {
	body, err := service.ImportTemplateCSV()
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", service.TemplateFilename(now)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
