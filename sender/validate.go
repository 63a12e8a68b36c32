package sender

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/prilive-com/welcomebot/tg"
)

// validateChatID validates a ChatID value.
func validateChatID(id tg.ChatID) error {
	if id == nil {
		return tg.NewValidationError("chat_id", "is required")
	}
	switch v := id.(type) {
	case int64:
		if v == 0 {
			return tg.NewValidationError("chat_id", "cannot be zero")
		}
		return nil
	case int:
		if v == 0 {
			return tg.NewValidationError("chat_id", "cannot be zero")
		}
		return nil
	case string:
		if v == "" {
			return tg.NewValidationError("chat_id", "cannot be empty")
		}
		if !strings.HasPrefix(v, "@") {
			return tg.NewValidationError("chat_id", "string chat_id must start with @")
		}
		return nil
	default:
		return tg.NewValidationError("chat_id", fmt.Sprintf("must be int64, int, or string, got %T", id))
	}
}

// validateUserID validates a user ID.
func validateUserID(id int64) error {
	if id <= 0 {
		return tg.NewValidationError("user_id", fmt.Sprintf("must be positive, got %d", id))
	}
	return nil
}

// validateText checks a message body against Telegram's length limit.
func validateText(text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return tg.NewValidationError("text", "cannot be empty")
	}
	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		return tg.NewValidationError("text", fmt.Sprintf("exceeds %d characters", maxLen))
	}
	return nil
}

// validateRequired checks a required string field.
func validateRequired(field, value string) error {
	if value == "" {
		return tg.NewValidationError(field, "is required")
	}
	return nil
}
