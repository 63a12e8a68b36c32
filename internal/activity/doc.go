// Package activity counts messages per user and builds leaderboards.
//
// Three counters are kept: lifetime, weekly and monthly. The weekly counter
// clears on the first Monday at least seven days after its previous reset;
// the monthly counter clears when the calendar month changes. Resets are
// checked on every Record and by Rollover, which the bot also runs on a
// schedule so quiet chats roll over too.
package activity
