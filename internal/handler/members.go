package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prilive-com/welcomebot/sender"
	"github.com/prilive-com/welcomebot/tg"
)

func (h *Handler) onJoined(ctx context.Context, logger *slog.Logger, msg *tg.Message) {
	for i := range msg.NewChatMembers {
		if ctx.Err() != nil {
			return
		}
		member := &msg.NewChatMembers[i]
		mlog := logger.With("member_id", member.ID)

		if member.ID == h.bot.ID {
			mlog.Info("bot was added to the chat")
			if err := h.reply(ctx, msg, botAddedText, ""); err != nil {
				mlog.Error("thank-you note not sent", "error", err)
			}
			continue
		}

		if !h.safely(mlog, "welcome", func() { h.welcome(ctx, mlog, msg, member) }) {
			continue
		}
		// A panic mid-welcome still leaves the member greeted.
		h.welcomeFallback(ctx, mlog, msg, member)
	}
}

// welcome greets one member with a MarkdownV2 message and a sticker.
func (h *Handler) welcome(ctx context.Context, logger *slog.Logger, msg *tg.Message, member *tg.User) {
	count := h.memberCount(ctx, logger, msg.Chat.ID)
	hasPhoto := h.hasProfilePhoto(ctx, logger, member.ID)

	text := h.welcomeText(member, count, hasPhoto)
	if err := h.reply(ctx, msg, text, tg.ParseModeMarkdownV2); err != nil {
		logger.Error("welcome failed", "error", err)
		h.welcomeFallback(ctx, logger, msg, member)
		return
	}
	logger.Info("welcome sent", "member", member.FullName(), "member_count", count)

	res, err := h.deliverer.Deliver(ctx, msg.Chat.ID, h.stickerTiers(true), h.sendSticker(msg, msg.MessageID))
	if err != nil {
		logger.Warn("welcome sticker not delivered", "error", err)
		return
	}
	logger.Debug("welcome sticker delivered", "tier", res.Tier, "attempts", res.Attempts)
}

func (h *Handler) welcomeFallback(ctx context.Context, logger *slog.Logger, msg *tg.Message, member *tg.User) {
	text := fmt.Sprintf(fallbackWelcome, tg.MentionHTML(member))
	if err := h.reply(ctx, msg, text, tg.ParseModeHTML); err != nil {
		logger.Error("fallback welcome failed", "error", err)
	}
}

// welcomeText picks one template. count <= 0 means unknown.
func (h *Handler) welcomeText(member *tg.User, count int, hasPhoto bool) string {
	mention := tg.MentionMarkdownV2(member)

	var options []string
	if count > 0 {
		for _, tmpl := range countedWelcomes {
			options = append(options, fmt.Sprintf(tmpl, mention, count))
		}
	} else {
		options = append(options, fmt.Sprintf(plainWelcome, mention))
	}
	if hasPhoto {
		options = append(options, fmt.Sprintf(photoWelcome, mention, h.pick(welcomeEmojis)))
	}
	return h.pick(options) + welcomeFooter
}

func (h *Handler) memberCount(ctx context.Context, logger *slog.Logger, chatID int64) int {
	n, err := h.api.GetChatMemberCount(ctx, chatID)
	if err != nil {
		logger.Warn("member count unavailable", "error", err)
		return 0
	}
	return n
}

func (h *Handler) hasProfilePhoto(ctx context.Context, logger *slog.Logger, userID int64) bool {
	photos, err := h.api.GetUserProfilePhotos(ctx, userID, sender.WithPhotosLimit(1))
	if err != nil {
		logger.Warn("profile photos unavailable", "error", err)
		return false
	}
	return photos.HasAny()
}

func (h *Handler) onLeft(ctx context.Context, logger *slog.Logger, msg *tg.Message) {
	member := msg.LeftChatMember
	if member.ID == h.bot.ID {
		logger.Info("bot left the chat")
		return
	}
	text := fmt.Sprintf(farewell, tg.MentionHTML(member))
	if err := h.reply(ctx, msg, text, tg.ParseModeHTML); err != nil {
		logger.Error("farewell not sent", "member_id", member.ID, "error", err)
	}
}
