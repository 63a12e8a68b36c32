// Command welcomebot runs the group welcome bot.
//
// Configuration comes from the environment, an optional .env file in the
// working directory, and an optional YAML file named by CONFIG_FILE. See
// internal/config for the full list of keys.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/prilive-com/welcomebot"
	"github.com/prilive-com/welcomebot/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "welcomebot: invalid configuration:\n%v\n", err)
		return 1
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bot, err := welcomebot.New(cfg.Token.Value(), botOptions(cfg, reg, logger)...)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		return 1
	}
	defer bot.Close()

	if err := bot.Start(ctx); err != nil {
		logger.Error("failed to start bot", "error", err)
		return 1
	}
	logger.Info("welcomebot started", "username", bot.Me().Username)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return bot.Run(gctx)
	})
	g.Go(func() error {
		return runRollover(gctx, cfg.RolloverSchedule, bot, logger)
	})
	if cfg.MetricsAddr != "" {
		srv := newOpsServer(cfg.MetricsAddr, reg, bot.IsHealthy)
		g.Go(func() error {
			return serveOps(gctx, srv, logger)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("welcomebot stopped with error", "error", err)
		return 1
	}
	logger.Info("welcomebot stopped")
	return 0
}

// botOptions maps process configuration onto bot options.
func botOptions(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) []welcomebot.Option {
	return []welcomebot.Option{
		welcomebot.WithLogger(logger),
		welcomebot.WithMetrics(reg),
		welcomebot.WithBaseURL(cfg.APIBaseURL),
		welcomebot.WithPolling(cfg.PollingTimeout, cfg.PollingLimit),
		welcomebot.WithPollingMaxErrors(cfg.PollingMaxErrors),
		welcomebot.WithDeleteWebhook(cfg.PollingDeleteWebhook),
		welcomebot.WithRetries(cfg.SenderMaxRetries),
		welcomebot.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		welcomebot.WithDeliveryPolicy(
			cfg.DeliveryMaxRetries,
			cfg.DeliveryRetryDelay,
			cfg.DeliveryOuterAttempts,
			cfg.DeliveryOuterDelay,
		),
		welcomebot.WithContentFile(cfg.ContentFile),
	}
}
