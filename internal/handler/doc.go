// Package handler turns incoming updates into bot replies.
//
// Handle is called once per update by a single dispatcher goroutine. It
// routes commands, greets and farewells members, and feeds plain text into
// the activity tracker. A failure or panic while handling one update is
// logged and answered with an apology; it never stops the dispatcher.
package handler
