package main

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/prilive-com/welcomebot/internal/activity"
)

type rolloverer interface {
	Rollover() []activity.Period
}

// runRollover applies activity counter resets on schedule so quiet chats
// roll over too. It blocks until ctx is done.
func runRollover(ctx context.Context, spec string, bot rolloverer, logger *slog.Logger) error {
	clog := cronLogger{logger: logger.With("component", "rollover")}
	c := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := c.AddFunc(spec, func() { rollover(bot, clog.logger) }); err != nil {
		return err
	}

	c.Start()
	logger.Info("rollover schedule started", "schedule", spec)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func rollover(bot rolloverer, logger *slog.Logger) {
	reset := bot.Rollover()
	if len(reset) == 0 {
		logger.Debug("no counters due")
		return
	}
	for _, p := range reset {
		logger.Info("counter rolled over", "period", p.String())
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
