package repository

import (
	"errors"

	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error, target **pq.Error) bool {
	if !errors.As(err, target) {
		return false
	}
	return (*target).Code == "23505"
}
