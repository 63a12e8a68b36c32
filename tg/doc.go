// Package tg provides the Telegram types shared by receiver, sender and the
// chat handlers.
//
// This package contains:
//   - The subset of Bot API types the bot consumes (Update, Message, User, Chat,
//     Sticker, StickerSet, UserProfilePhotos)
//   - Error types and sentinel errors
//   - SecretToken for safe token handling
//   - Formatting helpers for HTML and MarkdownV2 mentions
//   - Command parsing for bot_command entities
//
// # Usage
//
//	import "github.com/prilive-com/welcomebot/tg"
//
//	cmd, ok := msg.Command("mybot")
//	mention := tg.MentionHTML(user)
//	token := tg.SecretToken("123:ABC...")
package tg
