package bundb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

const sqlStateUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint violation, from
// either pgdriver (service) or pgx (integration tests).
func IsUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == sqlStateUniqueViolation
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == sqlStateUniqueViolation
	}
	return false
}
