package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the API is unreachable
	ErrServerOffline = errors.New("instalike API is unreachable")

	// ErrUnauthorized indicates the credential is missing, expired or revoked
	ErrUnauthorized = errors.New("not authenticated")

	// ErrRateLimited indicates the API rejected the call for sending too many requests
	ErrRateLimited = errors.New("too many requests")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates the API rejected the submitted fields
	ErrValidation = errors.New("validation failed")

	// ErrNotLoggedIn indicates an operation needs a session but none is active
	ErrNotLoggedIn = errors.New("no active session")

	// ErrInvalidCredentials indicates the login form failed local validation
	ErrInvalidCredentials = errors.New("the email or password you entered is invalid")
)

// ErrorKind is the category surfaced to the view layer
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnauthorized
	KindRateLimited
	KindNotFound
	KindValidationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindRateLimited:
		return "RateLimited"
	case KindNotFound:
		return "NotFound"
	case KindValidationFailed:
		return "ValidationFailed"
	default:
		return "Unknown"
	}
}

// KindForStatus maps an HTTP status code onto the error taxonomy
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindValidationFailed
	default:
		return KindUnknown
	}
}

// APIError is a non-2xx response from the API
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Fields holds per-field messages for ValidationFailed
	Fields map[string][]string
}

// NewAPIError builds an APIError for a status code
func NewAPIError(status int, message string, fields map[string][]string) *APIError {
	return &APIError{
		Kind:    KindForStatus(status),
		Status:  status,
		Message: message,
		Fields:  fields,
	}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
}

// Is lets errors.Is match an APIError against the taxonomy sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidationFailed
	}
	return false
}

// FieldMessages flattens Fields into a stable list of messages
func (e *APIError) FieldMessages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k]...)
	}
	return msgs
}

// KindOf returns the taxonomy member for any error
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNotLoggedIn):
		return KindUnauthorized
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidationFailed
	}
	return KindUnknown
}

// ValidationSummary joins an error's field messages, or returns its message
func ValidationSummary(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	msgs := apiErr.FieldMessages()
	if len(msgs) == 0 {
		return apiErr.Message
	}
	return strings.Join(msgs, "; ")
}
