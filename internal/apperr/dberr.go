package apperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// sqlite reports unique violations as "UNIQUE constraint failed: table.col, ..."
const sqliteUniquePrefix = "UNIQUE constraint failed: "

// UniqueViolation reports whether err is a unique-constraint violation and
// returns the constraint (postgres) or column list (sqlite) when known.
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	msg := err.Error()
	if i := strings.Index(msg, sqliteUniquePrefix); i >= 0 {
		return msg[i+len(sqliteUniquePrefix):], true
	}
	return "", false
}

// FromStorage translates a repository error. Record-not-found becomes
// NotFound(resource); unique violations become a ValidationError on the
// field the constraint names; anything else is Internal.
func FromStorage(err error, resource string) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(resource)
	}
	if constraint, ok := UniqueViolation(err); ok {
		return uniqueToValidation(constraint, err)
	}
	return Internal(err)
}

func uniqueToValidation(constraint string, cause error) *AppError {
	c := strings.ToLower(constraint)
	var ae *AppError
	switch {
	case strings.Contains(c, "title_author") ||
		(strings.Contains(c, "reviews") && strings.Contains(c, "author_id")):
		ae = DuplicateReview()
	case strings.Contains(c, "slug"):
		ae = FieldInvalid("slug", "an object with this slug already exists")
	case strings.Contains(c, "username"):
		ae = FieldInvalid("username", "a user with this username already exists")
	case strings.Contains(c, "email"):
		ae = FieldInvalid("email", "a user with this email already exists")
	case strings.Contains(c, "genre"):
		ae = FieldInvalid("genre", "genre is listed more than once")
	default:
		ae = Validation("object already exists")
	}
	ae.Cause = cause
	return ae
}

// IsAppError reports whether err (or any error in its chain) is an *AppError.
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}
