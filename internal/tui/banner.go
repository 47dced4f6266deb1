package tui

import (
	"errors"
	"fmt"

	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/tui/styles"
)

// Banner texts shown above a screen whose load failed
const (
	bannerLoggedOut = "You must be logged in to view this page"
	bannerOffline   = "Unable to reach the Instalike API, check your connection"

	loginInvalid = "The email or password you entered is invalid."
	loginFailed  = "Error logging in, make sure you entered a valid email address and password"
)

// LoadErrorText describes a failed load of subject ("feed posts", "post", "user")
func LoadErrorText(err error, subject string) string {
	if errors.Is(err, domain.ErrServerOffline) {
		return bannerOffline
	}
	switch domain.KindOf(err) {
	case domain.KindUnauthorized:
		return bannerLoggedOut
	case domain.KindRateLimited:
		return fmt.Sprintf("Error while fetching %s, too many requests", subject)
	case domain.KindNotFound:
		return fmt.Sprintf("The requested %s does not exist", subject)
	default:
		return fmt.Sprintf("An error occurred while fetching the %s", subject)
	}
}

// ActionErrorText describes a failed user action for the status bar
func ActionErrorText(err error, action string) string {
	if errors.Is(err, domain.ErrServerOffline) {
		return bannerOffline
	}
	switch domain.KindOf(err) {
	case domain.KindUnauthorized:
		return bannerLoggedOut
	case domain.KindRateLimited:
		return fmt.Sprintf("Error %s, too many requests", action)
	case domain.KindNotFound:
		return fmt.Sprintf("Error %s, it no longer exists", action)
	case domain.KindValidationFailed:
		return domain.ValidationSummary(err)
	default:
		return fmt.Sprintf("Error %s", action)
	}
}

// LoginErrorText describes a failed login for the login form
func LoginErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return loginInvalid
	case errors.Is(err, domain.ErrServerOffline):
		return bannerOffline
	case domain.KindOf(err) == domain.KindRateLimited:
		return "Error logging in, too many requests"
	default:
		return loginFailed
	}
}

// renderBanner renders an error banner across width
func renderBanner(text string, width int) string {
	if text == "" {
		return ""
	}
	return styles.ErrorBannerStyle.Width(max(width, 1)).Render(styles.Truncate(text, max(width-2, 1)))
}
