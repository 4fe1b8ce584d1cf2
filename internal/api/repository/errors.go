package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches the query.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
)

const (
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
	pgUniqueViolation          = "23505"
)

// isUniqueViolation reports whether err is the driver's conflict signal for a
// UNIQUE or PRIMARY KEY constraint.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		switch coded.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return true
		}
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
