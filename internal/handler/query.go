package handler

import (
	"time"

	"github.com/pulsekit/smsdash/internal/apperrors"
)

func errBadQueryParam(name string) error {
	return apperrors.Validation(name + " must be a non-negative integer")
}

// parseQueryTime accepts RFC3339 or a bare date for dateFrom/dateTo.
func parseQueryTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperrors.Validation("date filters must be RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}
