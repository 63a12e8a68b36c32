package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prilive-com/welcomebot/internal/activity"
	"github.com/prilive-com/welcomebot/tg"
)

type command struct {
	run func(ctx context.Context, logger *slog.Logger, msg *tg.Message) error
	// apology is sent when run fails or panics. Empty means log only.
	apology string
}

func (h *Handler) routes() map[string]command {
	return map[string]command{
		"start":      {run: h.start},
		"help":       {run: h.help},
		"joke":       {run: h.joke, apology: apologyJoke},
		"quote":      {run: h.quote, apology: apologyQuote},
		"sticker":    {run: h.sticker, apology: stickerUnavailable},
		"topweekly":  {run: h.leaderboard(activity.Weekly), apology: apologyTopWeekly},
		"topmonthly": {run: h.leaderboard(activity.Monthly), apology: apologyTopMonthly},
	}
}

// Commands lists the command names the handler answers.
func (h *Handler) Commands() []string {
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	return names
}

func (h *Handler) runCommand(ctx context.Context, logger *slog.Logger, name string, msg *tg.Message) {
	cmd, ok := h.commands[name]
	if !ok {
		logger.Debug("unknown command", "command", name)
		return
	}
	logger = logger.With("command", name)
	if msg.From != nil {
		logger = logger.With("user_id", msg.From.ID)
	}

	var err error
	panicked := h.safely(logger, name, func() { err = cmd.run(ctx, logger, msg) })
	status := statusOf(err, panicked)
	h.recorder.RecordCommand(name, status)

	switch {
	case panicked:
	case err == nil, errors.Is(err, errDegraded):
		return
	case ctx.Err() != nil:
		logger.Info("command cancelled", "error", err)
		return
	default:
		logger.Error("command failed", "error", err)
	}

	if cmd.apology == "" {
		return
	}
	if err := h.reply(ctx, msg, cmd.apology, ""); err != nil {
		logger.Error("apology not sent", "error", err)
	}
}

func (h *Handler) help(ctx context.Context, _ *slog.Logger, msg *tg.Message) error {
	return h.reply(ctx, msg, helpText, "")
}

// start answers with the help text followed by one sticker.
func (h *Handler) start(ctx context.Context, logger *slog.Logger, msg *tg.Message) error {
	logger.Info("start command received")
	if err := h.reply(ctx, msg, helpText, ""); err != nil {
		return err
	}
	res, err := h.deliverer.Deliver(ctx, msg.Chat.ID, h.stickerTiers(false), h.sendSticker(msg, 0))
	if err != nil {
		logger.Warn("start sticker not delivered", "error", err)
		return nil
	}
	logger.Debug("start sticker delivered", "tier", res.Tier, "attempts", res.Attempts)
	return nil
}

func (h *Handler) joke(ctx context.Context, _ *slog.Logger, msg *tg.Message) error {
	return h.reply(ctx, msg, "🎭 "+h.jokes.Next(), "")
}

func (h *Handler) quote(ctx context.Context, _ *slog.Logger, msg *tg.Message) error {
	q := h.quotes.Next()
	return h.reply(ctx, msg, fmt.Sprintf("\"%s\"\n— %s", q.Text, q.Author), "")
}

// sticker runs the full outer retry loop and falls back to a text notice.
func (h *Handler) sticker(ctx context.Context, logger *slog.Logger, msg *tg.Message) error {
	if err := h.api.SendChatAction(ctx, msg.Chat.ID, tg.ChatActionTyping); err != nil {
		logger.Warn("chat action failed", "error", err)
	}

	res, err := h.deliverer.DeliverWithRetry(ctx, msg.Chat.ID, h.stickerTiers(false), h.sendSticker(msg, 0))
	if err == nil {
		logger.Info("sticker delivered", "tier", res.Tier, "attempts", res.Attempts)
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	logger.Error("all sticker attempts failed", "error", err)
	if err := h.reply(ctx, msg, stickerUnavailable, ""); err != nil {
		return fmt.Errorf("send sticker notice: %w", err)
	}
	return fmt.Errorf("%w: %w", errDegraded, err)
}

func (h *Handler) leaderboard(period activity.Period) func(context.Context, *slog.Logger, *tg.Message) error {
	return func(ctx context.Context, _ *slog.Logger, msg *tg.Message) error {
		entries := h.tracker.Top(period, activity.LeaderboardSize)
		var mode tg.ParseMode
		if len(entries) > 0 {
			mode = tg.ParseModeMarkdown
		}
		return h.reply(ctx, msg, activity.Format(period, entries), mode)
	}
}
