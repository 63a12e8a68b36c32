package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prilive-com/welcomebot/internal/activity"
	"github.com/prilive-com/welcomebot/internal/content"
	"github.com/prilive-com/welcomebot/internal/delivery"
	"github.com/prilive-com/welcomebot/internal/metrics"
	"github.com/prilive-com/welcomebot/sender"
	"github.com/prilive-com/welcomebot/tg"
)

// Update kinds reported to the Recorder.
const (
	KindCommand = "command"
	KindText    = "text"
	KindJoined  = "joined"
	KindLeft    = "left"
	KindOther   = "other"
)

var (
	ErrMissingDependency = errors.New("welcomebot/handler: missing dependency")

	// errDegraded marks a command that answered with its degraded notice.
	errDegraded = errors.New("welcomebot/handler: degraded reply")
)

// API is the subset of the Bot API the handler calls. *sender.Client
// implements it.
type API interface {
	SendMessage(ctx context.Context, req sender.SendMessageRequest) (*tg.Message, error)
	SendSticker(ctx context.Context, req sender.SendStickerRequest) (*tg.Message, error)
	SendChatAction(ctx context.Context, chatID tg.ChatID, action tg.ChatAction) error
	GetChatMemberCount(ctx context.Context, chatID tg.ChatID) (int, error)
	GetUserProfilePhotos(ctx context.Context, userID int64, opts ...sender.GetUserProfilePhotosOption) (*tg.UserProfilePhotos, error)
}

// Recorder receives per-update metrics. *metrics.Metrics implements it.
type Recorder interface {
	RecordUpdate(kind string, took time.Duration)
	RecordCommand(command, status string)
	RecordActivity()
}

type nopRecorder struct{}

func (nopRecorder) RecordUpdate(string, time.Duration) {}
func (nopRecorder) RecordCommand(string, string)       {}
func (nopRecorder) RecordActivity()                    {}

// Deps are the collaborators a Handler needs. All fields are required.
type Deps struct {
	Bot       *tg.User
	Jokes     *content.Rotator[string]
	Quotes    *content.Rotator[content.Quote]
	Stickers  content.Stickers
	Tracker   *activity.Tracker
	Deliverer *delivery.Deliverer
}

// Handler dispatches updates. Create with New.
type Handler struct {
	api       API
	bot       tg.User
	jokes     *content.Rotator[string]
	quotes    *content.Rotator[content.Quote]
	stickers  content.Stickers
	tracker   *activity.Tracker
	deliverer *delivery.Deliverer

	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	mu  sync.Mutex
	rng *rand.Rand

	commands map[string]command
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		h.recorder = r
	}
}

// WithClock overrides time.Now for activity tracking.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithRand sets the source used to pick welcome templates.
func WithRand(r *rand.Rand) Option {
	return func(h *Handler) {
		h.rng = r
	}
}

// New creates a Handler.
func New(api API, deps Deps, opts ...Option) (*Handler, error) {
	switch {
	case api == nil:
		return nil, fmt.Errorf("%w: api", ErrMissingDependency)
	case deps.Bot == nil:
		return nil, fmt.Errorf("%w: bot identity", ErrMissingDependency)
	case deps.Jokes == nil, deps.Quotes == nil:
		return nil, fmt.Errorf("%w: content rotators", ErrMissingDependency)
	case deps.Tracker == nil:
		return nil, fmt.Errorf("%w: activity tracker", ErrMissingDependency)
	case deps.Deliverer == nil:
		return nil, fmt.Errorf("%w: deliverer", ErrMissingDependency)
	}

	h := &Handler{
		api:       api,
		bot:       *deps.Bot,
		jokes:     deps.Jokes,
		quotes:    deps.Quotes,
		stickers:  deps.Stickers,
		tracker:   deps.Tracker,
		deliverer: deps.Deliverer,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.recorder == nil {
		h.recorder = nopRecorder{}
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	h.commands = h.routes()
	return h, nil
}

// Handle processes one update. It returns once every reply has been sent or
// given up on.
func (h *Handler) Handle(ctx context.Context, u tg.Update) {
	start := time.Now()
	logger := h.logger.With("update_id", u.UpdateID, "trace_id", uuid.NewString())

	kind := h.dispatch(ctx, logger, u)
	h.recorder.RecordUpdate(kind, time.Since(start))
}

func (h *Handler) dispatch(ctx context.Context, logger *slog.Logger, u tg.Update) string {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		logger.Debug("ignoring update", "kind", u.Kind())
		return KindOther
	}
	logger = logger.With("chat_id", msg.Chat.ID)

	switch {
	case len(msg.NewChatMembers) > 0:
		h.safely(logger, "new_chat_members", func() { h.onJoined(ctx, logger, msg) })
		return KindJoined

	case msg.LeftChatMember != nil:
		h.safely(logger, "left_chat_member", func() { h.onLeft(ctx, logger, msg) })
		return KindLeft
	}

	if cmd, ok := msg.Command(); ok {
		if cmd.Mention != "" && !strings.EqualFold(cmd.Mention, h.bot.Username) {
			logger.Debug("command for another bot", "command", cmd.Name, "mention", cmd.Mention)
			return KindOther
		}
		h.runCommand(ctx, logger, cmd.Name, msg)
		return KindCommand
	}

	if msg.Text != "" && msg.From != nil {
		h.tracker.Record(msg.From, h.now())
		h.recorder.RecordActivity()
		return KindText
	}
	return KindOther
}

// safely runs fn and logs a panic instead of propagating it.
func (h *Handler) safely(logger *slog.Logger, what string, fn func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			logger.Error("handler panic",
				"handler", what,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
	return false
}

// reply sends text into the message's chat as a reply to it.
func (h *Handler) reply(ctx context.Context, msg *tg.Message, text string, mode tg.ParseMode) error {
	_, err := h.api.SendMessage(ctx, sender.SendMessageRequest{
		ChatID:             msg.Chat.ID,
		MessageThreadID:    msg.MessageThreadID,
		Text:               text,
		ParseMode:          mode,
		LinkPreviewOptions: sender.NoLinkPreview(),
		ReplyParameters:    sender.ReplyTo(msg.MessageID),
	})
	return err
}

// sendSticker returns the AttemptFunc used for sticker delivery.
func (h *Handler) sendSticker(msg *tg.Message, replyTo int) delivery.AttemptFunc {
	return func(ctx context.Context, target int64, fileID string) error {
		_, err := h.api.SendSticker(ctx, sender.SendStickerRequest{
			ChatID:          target,
			MessageThreadID: msg.MessageThreadID,
			Sticker:         fileID,
			ReplyParameters: sender.ReplyTo(replyTo),
		})
		return err
	}
}

// stickerTiers returns the tiers for a general sticker request. The welcome
// tier goes first only when greeting a member.
func (h *Handler) stickerTiers(welcome bool) []delivery.Tier {
	tiers := make([]delivery.Tier, 0, 3)
	if welcome {
		tiers = append(tiers, delivery.LiteralTier("welcome", h.stickers.Welcome...))
	}
	return append(tiers,
		delivery.LiteralTier("fallback", h.stickers.Fallback...),
		delivery.NamedSetTier("sets", h.stickers.Sets...),
	)
}

func (h *Handler) pick(items []string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return items[h.rng.IntN(len(items))]
}

func statusOf(err error, panicked bool) string {
	switch {
	case panicked:
		return metrics.StatusPanic
	case err == nil:
		return metrics.StatusOK
	case errors.Is(err, errDegraded):
		return metrics.StatusDegraded
	default:
		return metrics.StatusError
	}
}
