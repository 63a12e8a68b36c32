package tg

import (
	"log/slog"
	"strconv"
	"strings"
)

const redacted = "[REDACTED]"

// SecretToken wraps a bot token so it never ends up in logs, errors or
// serialized config dumps.
type SecretToken string

// Value returns the raw token. Only the transport should call it.
func (s SecretToken) Value() string { return string(s) }

// String implements fmt.Stringer.
func (s SecretToken) String() string { return redacted }

// GoString implements fmt.GoStringer so %#v stays redacted too.
func (s SecretToken) GoString() string { return `tg.SecretToken("` + redacted + `")` }

// LogValue implements slog.LogValuer.
func (s SecretToken) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalText implements encoding.TextMarshaler.
func (s SecretToken) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

// IsEmpty returns true if the token is empty.
func (s SecretToken) IsEmpty() bool {
	return s == ""
}

// BotID returns the numeric bot identifier encoded before the colon.
// It is not secret and is safe to log.
func (s SecretToken) BotID() (int64, bool) {
	prefix, _, found := strings.Cut(string(s), ":")
	if !found || prefix == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
