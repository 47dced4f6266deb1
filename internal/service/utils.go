package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/instalike/internal/domain"
)

const minPasswordLength = 6

// validateCredentials mirrors the login form checks done before any request
func validateCredentials(creds domain.Credentials) error {
	if !strings.Contains(creds.Email, "@") || utf8.RuneCountInString(creds.Password) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// requireText rejects blank user input
func requireText(field, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return text, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	return nil
}
