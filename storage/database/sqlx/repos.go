// Package sqlxrepos implements the core repositories over PostgreSQL using sqlx.
package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Wrap wraps an opened *sql.DB for use by the repositories.
func Wrap(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "postgres")
}

// uniqueViolation reports whether err is a unique-constraint violation on the
// named constraint.
func uniqueViolation(err error, constraint string) bool {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code == "23505" && string(pqErr.Constraint) == constraint
	}
	return false
}

// trapNoRows maps sql.ErrNoRows to the domain not-found error.
func trapNoRows(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}
