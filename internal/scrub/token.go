// Package scrub removes the bot token from text that may reach logs.
//
// net/http embeds the request URL in transport errors, and every Bot API URL
// carries the token in its path.
package scrub

import (
	"strings"

	"github.com/prilive-com/welcomebot/tg"
)

const placeholder = "[REDACTED]"

// TokenFromString replaces every occurrence of the token in s.
func TokenFromString(s string, token tg.SecretToken) string {
	tokenVal := token.Value()
	if tokenVal == "" || !strings.Contains(s, tokenVal) {
		return s
	}
	return strings.ReplaceAll(s, tokenVal, placeholder)
}

// TokenFromError returns err with the token removed from its message.
// The original chain stays reachable through Unwrap for errors.Is/As.
func TokenFromError(err error, token tg.SecretToken) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	clean := TokenFromString(msg, token)
	if clean == msg {
		return err
	}
	return &scrubbedError{msg: clean, err: err}
}

type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }
