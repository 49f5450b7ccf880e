package bulkspec

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isIntegrityViolation reports whether an execution error is a constraint
// violation rather than an infrastructure failure. Constraint violations
// trigger the row-by-row fallback; anything else fails the chunk outright.
func isIntegrityViolation(err error) bool {
	if err == nil {
		return false
	}

	// PostgreSQL: SQLSTATE class 23 covers all integrity violations
	// (not null, foreign key, unique, check, exclusion).
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}

	// SQLite drivers surface constraint failures as plain error strings.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint")
}
