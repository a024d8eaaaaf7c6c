package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"yamdb/internal/apperr"
)

const (
	maxNameLen     = 256
	maxSlugLen     = 50
	maxUsernameLen = 150
	maxEmailLen    = 254
	maxPersonLen   = 150
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

	validate = validator.New()
)

// fieldErrors collects per-field problems before failing a request.
type fieldErrors []apperr.FieldError

func (fe *fieldErrors) add(field, msg string) {
	*fe = append(*fe, apperr.FieldError{Field: field, Message: msg})
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	if len(fe) == 1 {
		return apperr.Validation(fe[0].Message, fe...)
	}
	return apperr.Validation("invalid input", fe...)
}

func checkName(fe *fieldErrors, field, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		fe.add(field, field+" is required")
	case utf8.RuneCountInString(name) > maxNameLen:
		fe.add(field, fmt.Sprintf("%s must be at most %d characters", field, maxNameLen))
	}
}

func checkSlug(fe *fieldErrors, slug string) {
	switch {
	case slug == "":
		fe.add("slug", "slug is required")
	case len(slug) > maxSlugLen:
		fe.add("slug", fmt.Sprintf("slug must be at most %d characters", maxSlugLen))
	case !slugPattern.MatchString(slug):
		fe.add("slug", "slug may contain only letters, digits, hyphens and underscores")
	}
}

func checkUsername(fe *fieldErrors, username string) {
	switch {
	case username == "":
		fe.add("username", "username is required")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		fe.add("username", fmt.Sprintf("username must be at most %d characters", maxUsernameLen))
	case !usernamePattern.MatchString(username):
		fe.add("username", "username may contain only letters, digits and @/./+/-/_")
	case strings.EqualFold(username, "me"):
		fe.add("username", `username "me" is reserved`)
	}
}

func checkEmail(fe *fieldErrors, email string) {
	switch {
	case email == "":
		fe.add("email", "email is required")
	case len(email) > maxEmailLen:
		fe.add("email", fmt.Sprintf("email must be at most %d characters", maxEmailLen))
	case validate.Var(email, "email") != nil:
		fe.add("email", "enter a valid email address")
	}
}

func checkPersonField(fe *fieldErrors, field, value string) {
	if utf8.RuneCountInString(value) > maxPersonLen {
		fe.add(field, fmt.Sprintf("%s must be at most %d characters", field, maxPersonLen))
	}
}

// normalizePage applies the listing defaults.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
