// Package auth hashes passwords, issues JWTs and authenticates gin requests.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
)

const MinPasswordLength = 6

// ValidatePassword enforces the signup policy: at least six characters, no
// whitespace, and at least one lowercase letter, uppercase letter and digit.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return apperrors.InvalidArgument("password cannot be empty").WithField("field", "password")
	}
	if len(password) < MinPasswordLength {
		return apperrors.InvalidArgument(fmt.Sprintf("password must be at least %d characters", MinPasswordLength)).
			WithField("field", "password")
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return apperrors.InvalidArgument("password cannot contain spaces").WithField("field", "password")
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	var missing []string
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if len(missing) > 0 {
		return apperrors.InvalidArgument("password must contain " + strings.Join(missing, ", ")).
			WithField("field", "password")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword returns Unauthorized when password does not match hash.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperrors.Unauthorized("invalid credentials")
	}
	if err != nil {
		return apperrors.Internal("failed to verify password", err)
	}
	return nil
}
