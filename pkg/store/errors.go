package store

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// translateConstraint maps driver-specific unique violation errors to
// ErrDuplicate so callers can branch without importing driver packages.
// SQLite violations are matched by message since the test driver exposes
// no stable error type through database/sql.
func translateConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}
