// Package receiver pulls updates from Telegram with getUpdates long polling.
//
//	updates := make(chan tg.Update, cfg.UpdateBufferSize)
//	poller := receiver.NewPollingClient(token, updates, logger, cfg)
//	if err := poller.Start(ctx); err != nil {
//	    return err
//	}
//	defer poller.Stop()
//
// The offset only advances after an update was handed to the channel, so
// updates not yet consumed are fetched again after a restart. Failed polls
// back off exponentially behind a circuit breaker; after PollingMaxErrors
// consecutive failures, or an unauthorized token, polling gives up and Done
// is closed.
package receiver
