package tg

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors - use with errors.Is()
var (
	// API errors
	ErrUnauthorized    = errors.New("welcomebot: unauthorized (invalid token)")
	ErrForbidden       = errors.New("welcomebot: forbidden")
	ErrNotFound        = errors.New("welcomebot: not found")
	ErrTooManyRequests = errors.New("welcomebot: too many requests")

	// Chat/User errors
	ErrBotBlocked      = errors.New("welcomebot: bot blocked by user")
	ErrBotKicked       = errors.New("welcomebot: bot kicked from chat")
	ErrChatNotFound    = errors.New("welcomebot: chat not found")
	ErrUserDeactivated = errors.New("welcomebot: user deactivated")
	ErrNoRights        = errors.New("welcomebot: not enough rights")

	// Resource errors
	ErrStickerSetInvalid = errors.New("welcomebot: sticker set invalid")
	ErrWrongFileID       = errors.New("welcomebot: wrong file identifier")
	ErrCantParseEntities = errors.New("welcomebot: can't parse entities")

	// Client errors
	ErrCircuitOpen      = errors.New("welcomebot: circuit breaker open")
	ErrMaxRetries       = errors.New("welcomebot: max retries exceeded")
	ErrResponseTooLarge = errors.New("welcomebot: response too large")

	// Validation errors
	ErrInvalidToken  = errors.New("welcomebot: invalid bot token format")
	ErrInvalidConfig = errors.New("welcomebot: invalid configuration")
)

// ResponseParameters contains information about why a request was unsuccessful.
type ResponseParameters struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}

// APIError represents an error response from Telegram API.
// Use errors.As() to extract details, errors.Is() to match sentinels.
type APIError struct {
	Code        int
	Description string
	RetryAfter  time.Duration
	Method      string              // API method that failed
	Parameters  *ResponseParameters // Additional response parameters
	cause       error               // Underlying sentinel for errors.Is()
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("welcomebot: %s failed: %s (code=%d, retry_after=%s)",
			e.Method, e.Description, e.Code, e.RetryAfter)
	}
	return fmt.Sprintf("welcomebot: %s failed: %s (code=%d)", e.Method, e.Description, e.Code)
}

// Unwrap returns the underlying sentinel error for errors.Is() support.
func (e *APIError) Unwrap() error { return e.cause }

// IsRetryable returns true if the error is temporary and may succeed on retry.
func (e *APIError) IsRetryable() bool {
	return e.Code == 429 || (e.Code >= 500 && e.Code <= 504)
}

// NewAPIError creates an APIError with automatic sentinel detection.
func NewAPIError(method string, code int, description string) *APIError {
	return &APIError{
		Code:        code,
		Description: description,
		Method:      method,
		cause:       DetectSentinel(code, description),
	}
}

// NewAPIErrorWithRetry creates an APIError with retry information.
func NewAPIErrorWithRetry(method string, code int, description string, retryAfter time.Duration) *APIError {
	return &APIError{
		Code:        code,
		Description: description,
		Method:      method,
		RetryAfter:  retryAfter,
		cause:       DetectSentinel(code, description),
	}
}

// DetectSentinel maps Telegram error codes/descriptions to sentinel errors.
// Description-based detection is prioritized over HTTP status codes.
func DetectSentinel(code int, desc string) error {
	descLower := strings.ToLower(desc)
	switch {
	case strings.Contains(descLower, "bot was blocked"):
		return ErrBotBlocked
	case strings.Contains(descLower, "bot was kicked"):
		return ErrBotKicked
	case strings.Contains(descLower, "chat not found"):
		return ErrChatNotFound
	case strings.Contains(descLower, "user is deactivated"):
		return ErrUserDeactivated
	case strings.Contains(descLower, "not enough rights"):
		return ErrNoRights
	case strings.Contains(descLower, "stickerset_invalid"):
		return ErrStickerSetInvalid
	case strings.Contains(descLower, "wrong file identifier"),
		strings.Contains(descLower, "wrong remote file identifier"):
		return ErrWrongFileID
	case strings.Contains(descLower, "can't parse entities"):
		return ErrCantParseEntities
	}

	// Fall back to generic HTTP status code sentinels
	switch code {
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrTooManyRequests
	}

	return nil
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("welcomebot: validation: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("welcomebot: config: %s - %s", e.Key, e.Message)
}

// Unwrap lets callers match any ConfigError with errors.Is(err, ErrInvalidConfig).
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// NewConfigError creates a new ConfigError.
func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{Key: key, Message: message}
}
