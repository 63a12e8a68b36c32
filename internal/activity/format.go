package activity

import (
	"fmt"
	"strings"

	"github.com/prilive-com/welcomebot/tg"
)

// LeaderboardSize is how many rows /topweekly and /topmonthly show.
const LeaderboardSize = 10

// Format renders a leaderboard for the legacy Markdown parse mode.
func Format(period Period, entries []Entry) string {
	span := "week"
	if period == Monthly {
		span = "month"
	}
	if len(entries) == 0 {
		return fmt.Sprintf("No activity stats for this %s yet!", span)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 *Top Active Members This %s* 🏆\n\n", strings.ToUpper(span[:1])+span[1:])
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s (@%s): %d messages\n",
			i+1,
			tg.EscapeMarkdown(e.FullName),
			tg.EscapeMarkdown(e.Username),
			e.Count,
		)
	}
	return b.String()
}
