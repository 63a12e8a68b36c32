package tg

// Update represents an incoming update from Telegram.
// Only the update kinds the bot subscribes to are decoded.
type Update struct {
	UpdateID      int      `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
}

// Update kinds reported in logs and metrics.
const (
	UpdateKindMessage       = "message"
	UpdateKindEditedMessage = "edited_message"
	UpdateKindUnknown       = "unknown"
)

// AllowedUpdates lists the update types requested from getUpdates.
var AllowedUpdates = []string{UpdateKindMessage}

// Kind returns which field of the update is populated.
func (u Update) Kind() string {
	switch {
	case u.Message != nil:
		return UpdateKindMessage
	case u.EditedMessage != nil:
		return UpdateKindEditedMessage
	default:
		return UpdateKindUnknown
	}
}
