package postgres

import (
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// failure, optionally restricted to a named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func optionalString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
