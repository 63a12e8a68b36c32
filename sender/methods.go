package sender

import (
	"context"

	"github.com/prilive-com/welcomebot/tg"
)

// GetMe returns basic information about the bot.
func (c *Client) GetMe(ctx context.Context) (*tg.User, error) {
	user, err := callJSONResult[tg.User](c, ctx, "getMe", struct{}{}, "")
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SendMessage sends a text message.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*tg.Message, error) {
	if err := validateChatID(req.ChatID); err != nil {
		return nil, err
	}
	if err := validateText(req.Text, c.config.MaxTextLength); err != nil {
		return nil, err
	}
	msg, err := callJSONResult[tg.Message](c, ctx, "sendMessage", req, extractChatID(req.ChatID))
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendSticker sends a sticker by file_id.
func (c *Client) SendSticker(ctx context.Context, req SendStickerRequest) (*tg.Message, error) {
	if err := validateChatID(req.ChatID); err != nil {
		return nil, err
	}
	if err := validateRequired("sticker", req.Sticker); err != nil {
		return nil, err
	}
	msg, err := callJSONResult[tg.Message](c, ctx, "sendSticker", req, extractChatID(req.ChatID))
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendChatAction shows a status such as "typing" in the chat.
func (c *Client) SendChatAction(ctx context.Context, chatID tg.ChatID, action tg.ChatAction) error {
	if err := validateChatID(chatID); err != nil {
		return err
	}
	return c.callJSON(ctx, "sendChatAction", SendChatActionRequest{
		ChatID: chatID,
		Action: action,
	}, nil, extractChatID(chatID))
}

// GetStickerSet returns a sticker set by name.
func (c *Client) GetStickerSet(ctx context.Context, name string) (*tg.StickerSet, error) {
	if err := validateRequired("name", name); err != nil {
		return nil, err
	}
	set, err := callJSONResult[tg.StickerSet](c, ctx, "getStickerSet", GetStickerSetRequest{Name: name}, "")
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// GetChatMemberCount returns the number of members in a chat.
func (c *Client) GetChatMemberCount(ctx context.Context, chatID tg.ChatID) (int, error) {
	if err := validateChatID(chatID); err != nil {
		return 0, err
	}
	return callJSONResult[int](c, ctx, "getChatMemberCount", GetChatRequest{ChatID: chatID}, "")
}

// GetUserProfilePhotosOption configures GetUserProfilePhotos.
type GetUserProfilePhotosOption func(*GetUserProfilePhotosRequest)

// WithPhotosOffset sets the offset for profile photos.
func WithPhotosOffset(offset int) GetUserProfilePhotosOption {
	return func(r *GetUserProfilePhotosRequest) {
		r.Offset = offset
	}
}

// WithPhotosLimit sets the limit for profile photos (1-100).
func WithPhotosLimit(limit int) GetUserProfilePhotosOption {
	return func(r *GetUserProfilePhotosRequest) {
		r.Limit = limit
	}
}

// GetUserProfilePhotos returns a user's profile pictures.
func (c *Client) GetUserProfilePhotos(ctx context.Context, userID int64, opts ...GetUserProfilePhotosOption) (*tg.UserProfilePhotos, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	req := GetUserProfilePhotosRequest{UserID: userID}
	for _, opt := range opts {
		opt(&req)
	}
	photos, err := callJSONResult[tg.UserProfilePhotos](c, ctx, "getUserProfilePhotos", req, "")
	if err != nil {
		return nil, err
	}
	return &photos, nil
}
