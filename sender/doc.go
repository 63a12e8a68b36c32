// Package sender provides the outbound Bot API client used by the bot.
//
// # Features
//
//   - Circuit breaker for fault tolerance
//   - Per-chat, group and global rate limiting
//   - Retry with exponential backoff and retry_after handling
//   - Token scrubbing in transport errors
//
// Only the methods the bot needs are implemented: getMe, sendMessage,
// sendSticker, sendChatAction, getStickerSet, getChatMemberCount and
// getUserProfilePhotos.
//
// # Usage
//
//	client, err := sender.New(token,
//	    sender.WithRateLimit(30, 10),
//	    sender.WithRetries(3),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	_, err = client.SendSticker(ctx, sender.SendStickerRequest{
//	    ChatID:  chatID,
//	    Sticker: fileID,
//	})
package sender
