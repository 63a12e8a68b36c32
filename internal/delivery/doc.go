// Package delivery sends a resource through ordered fallback tiers.
//
// Deliver tries each tier up to Policy.MaxRetries times, picking a random
// resource per attempt. A named-set tier first resolves a random set name to
// its resources; a failed or empty resolution counts as a failed attempt.
// DeliverWithRetry wraps Deliver in an outer loop for call sites that want a
// second chance before giving up.
//
//	d := delivery.New(delivery.DefaultPolicy(),
//	    delivery.WithResolver(delivery.NewStickerSetResolver(client)),
//	)
//	res, err := d.Deliver(ctx, chatID, []delivery.Tier{
//	    delivery.LiteralTier("fallback", ids...),
//	    delivery.NamedSetTier("sets", "MemeFun"),
//	}, send)
package delivery
