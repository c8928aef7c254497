package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolationErrCode = "23505"

// uniqueViolationConstraint reports whether err is a unique constraint
// violation and, if so, returns the name of the violated constraint.
func uniqueViolationConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode {
		return pgErr.ConstraintName, true
	}

	return "", false
}
