package handler

const helpText = "👋 Welcome to the group! I am your welcome bot.\n\n" +
	"Available commands:\n" +
	"/joke - Get a random joke\n" +
	"/quote - Get an inspirational quote\n" +
	"/sticker - Get a random sticker\n" +
	"/topweekly - Show most active members this week\n" +
	"/topmonthly - Show most active members this month"

const (
	apologyJoke       = "I'm all out of jokes for now!"
	apologyQuote      = "I'm fresh out of wisdom for now!"
	apologyTopWeekly  = "Couldn't fetch weekly stats right now."
	apologyTopMonthly = "Couldn't fetch monthly stats right now."

	stickerUnavailable = "🎭 Sticker service is temporarily unavailable. I'll be back with more stickers soon! 🎨"

	botAddedText = "🤖 Thanks for adding me! I'll welcome new members to this group. " +
		"Make me an admin to get the best experience! 🚀"
)

// Welcome templates are MarkdownV2. %[1]s is the member mention, %[2]d the
// member count.
var countedWelcomes = []string{
	"👋 Welcome aboard MATE, %[1]s\\! 🎉\nYou're member \\#%[2]d\\!",
	"👋 Welcome aboard MATE, %[1]s\\! 🎉\nGreat to have you as member \\#%[2]d\\!",
	"👋 Welcome aboard MATE, %[1]s\\! 🎉\nThrilled to have you join us\\! You're member \\#%[2]d",
}

// Used when the member count is unavailable.
const plainWelcome = "👋 Welcome aboard MATE, %[1]s\\! 🎉\nGreat to have you here\\!"

// %[1]s is the mention, %[2]s a random emoji.
const photoWelcome = "%[2]s *Welcome* %[1]s\\! %[2]s\nLove your profile picture\\! 😍"

const welcomeFooter = "\n\n_Type /help to see what I can do\\!_"

var welcomeEmojis = []string{"👋", "🎉", "🌟", "✨", "🙌", "🤗", "😊", "🎊", "👏", "💫"}

// HTML.
const (
	fallbackWelcome = "👋 Welcome aboard MATE, %s! 🎉"
	farewell        = "👋 %s, we're sorry to see you go! You'll be missed!"
)
