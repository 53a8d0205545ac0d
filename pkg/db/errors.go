package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation from
// either Postgres or SQLite. When constraintName is provided the violation must
// reference it.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}

	msg := err.Error()
	matched := errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !matched {
		return false
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return true
}

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
