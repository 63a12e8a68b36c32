// Package welcomebot is a Telegram group bot that greets new members, says
// goodbye to leavers, serves jokes, quotes and stickers on command, and keeps
// weekly and monthly activity leaderboards.
//
// # Quick Start
//
//	bot, err := welcomebot.New(token,
//	    welcomebot.WithPolling(30, 100),
//	    welcomebot.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bot.Close()
//
//	if err := bot.Start(ctx); err != nil {
//	    log.Fatal(err) // bad token or API unreachable
//	}
//	err = bot.Run(ctx)
//
// Updates arrive by long polling and are handled one at a time. Outbound
// calls go through the sender package, which retries transient failures,
// honours retry_after, rate limits per chat and trips a circuit breaker when
// the API keeps failing.
//
// # Stickers
//
// Sticker replies walk an ordered list of tiers: literal file IDs first, then
// sticker sets resolved by name. Each tier gets several attempts before the
// next one is tried, and /sticker repeats the whole walk before answering
// with a text notice instead.
//
// # Leaderboards
//
// Activity counters live in memory only and are lost on restart. The weekly
// board clears on Mondays, the monthly board when the month changes.
package welcomebot
