package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/apperrors"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respondError maps the error taxonomy to a status code and an {error}
// body. Unclassified and upstream failures are logged with full detail
// but surface as a generic 500.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", zap.Error(err))
	}
	respondJSON(w, status, map[string]string{"error": apperrors.PublicMessage(err)})
}
