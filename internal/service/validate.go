package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
)

const (
	minPasswordLength    = 6
	maxPasswordLength    = 72
	maxDisplayNameLength = 64
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return apiErrors.NewErrValidation("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apiErrors.NewErrValidation("email must be a valid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apiErrors.NewErrValidation("password must be at least 6 characters long")
	}
	if len(password) > maxPasswordLength {
		return apiErrors.NewErrValidation("password must be at most 72 bytes long")
	}
	return nil
}

func validateDisplayName(name string) error {
	if utf8.RuneCountInString(name) > maxDisplayNameLength {
		return apiErrors.NewErrValidation("display name must be at most 64 characters long")
	}
	return nil
}
