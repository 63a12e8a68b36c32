package sender

import "github.com/prilive-com/welcomebot/tg"

// LinkPreviewOptions controls link preview generation for a message.
type LinkPreviewOptions struct {
	IsDisabled bool `json:"is_disabled,omitempty"`
}

// ReplyParameters describes the message being replied to.
type ReplyParameters struct {
	MessageID                int  `json:"message_id"`
	AllowSendingWithoutReply bool `json:"allow_sending_without_reply,omitempty"`
}

// SendMessageRequest represents a request to send a text message.
type SendMessageRequest struct {
	ChatID              tg.ChatID           `json:"chat_id"`
	MessageThreadID     int                 `json:"message_thread_id,omitempty"`
	Text                string              `json:"text"`
	ParseMode           tg.ParseMode        `json:"parse_mode,omitempty"`
	LinkPreviewOptions  *LinkPreviewOptions `json:"link_preview_options,omitempty"`
	DisableNotification bool                `json:"disable_notification,omitempty"`
	ReplyParameters     *ReplyParameters    `json:"reply_parameters,omitempty"`
}

// SendStickerRequest represents a request to send a sticker by file_id.
type SendStickerRequest struct {
	ChatID              tg.ChatID        `json:"chat_id"`
	MessageThreadID     int              `json:"message_thread_id,omitempty"`
	Sticker             string           `json:"sticker"`
	Emoji               string           `json:"emoji,omitempty"`
	DisableNotification bool             `json:"disable_notification,omitempty"`
	ReplyParameters     *ReplyParameters `json:"reply_parameters,omitempty"`
}

// SendChatActionRequest represents a sendChatAction request.
type SendChatActionRequest struct {
	ChatID          tg.ChatID     `json:"chat_id"`
	MessageThreadID int           `json:"message_thread_id,omitempty"`
	Action          tg.ChatAction `json:"action"`
}

// GetStickerSetRequest represents a getStickerSet request.
type GetStickerSetRequest struct {
	Name string `json:"name"`
}

// GetChatRequest represents a request keyed only by chat.
type GetChatRequest struct {
	ChatID tg.ChatID `json:"chat_id"`
}

// GetUserProfilePhotosRequest represents a getUserProfilePhotos request.
type GetUserProfilePhotosRequest struct {
	UserID int64 `json:"user_id"`
	Offset int   `json:"offset,omitempty"`
	Limit  int   `json:"limit,omitempty"`
}

// ReplyTo builds reply parameters that still deliver when the original
// message was deleted.
func ReplyTo(messageID int) *ReplyParameters {
	if messageID <= 0 {
		return nil
	}
	return &ReplyParameters{MessageID: messageID, AllowSendingWithoutReply: true}
}

// NoLinkPreview disables link previews.
func NoLinkPreview() *LinkPreviewOptions {
	return &LinkPreviewOptions{IsDisabled: true}
}
