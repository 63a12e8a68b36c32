package tg

import (
	"strings"
	"unicode/utf16"
)

// ChatID represents a Telegram chat identifier.
// Valid types: int64 (numeric ID) or string (public username like "@groupname").
type ChatID = any

// Message represents a Telegram message.
type Message struct {
	MessageID       int             `json:"message_id"`
	MessageThreadID int             `json:"message_thread_id,omitempty"`
	From            *User           `json:"from,omitempty"`
	SenderChat      *Chat           `json:"sender_chat,omitempty"`
	Date            int64           `json:"date"`
	Chat            *Chat           `json:"chat"`
	ReplyToMessage  *Message        `json:"reply_to_message,omitempty"`
	EditDate        int64           `json:"edit_date,omitempty"`
	Text            string          `json:"text,omitempty"`
	Entities        []MessageEntity `json:"entities,omitempty"`
	Caption         string          `json:"caption,omitempty"`
	Photo           []PhotoSize     `json:"photo,omitempty"`
	Sticker         *Sticker        `json:"sticker,omitempty"`
	NewChatMembers  []User          `json:"new_chat_members,omitempty"`
	LeftChatMember  *User           `json:"left_chat_member,omitempty"`
}

// Command describes a bot command found at the start of a message.
type Command struct {
	Name      string // without the leading slash, lowercased
	Mention   string // the @botname suffix, if any
	Arguments string
}

// Command extracts the bot command at offset 0.
// Telegram marks commands with a bot_command entity; messages without one are
// not commands even when they start with a slash.
func (m *Message) Command() (Command, bool) {
	if m == nil || m.Text == "" || len(m.Entities) == 0 {
		return Command{}, false
	}
	e := m.Entities[0]
	if e.Type != EntityBotCommand || e.Offset != 0 {
		return Command{}, false
	}

	// Entity offsets are in UTF-16 code units.
	units := utf16.Encode([]rune(m.Text))
	if e.Length <= 1 || e.Length > len(units) {
		return Command{}, false
	}
	raw := string(utf16.Decode(units[1:e.Length]))
	rest := string(utf16.Decode(units[e.Length:]))

	name, mention, _ := strings.Cut(raw, "@")
	return Command{
		Name:      strings.ToLower(name),
		Mention:   mention,
		Arguments: strings.TrimSpace(rest),
	}, true
}

// IsCommand reports whether the message starts with a bot command.
func (m *Message) IsCommand() bool {
	_, ok := m.Command()
	return ok
}

// User represents a Telegram user or bot.
type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// FullName joins first and last name the way Telegram clients display it.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Chat represents a Telegram chat.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsForum   bool   `json:"is_forum,omitempty"`
}

// ChatType returns the typed chat kind.
func (c *Chat) ChatType() ChatType {
	if c == nil {
		return ""
	}
	return ChatType(c.Type)
}

// Entity types.
const (
	EntityBotCommand = "bot_command"
	EntityMention    = "mention"
	EntityTextLink   = "text_link"
)

// MessageEntity represents a special entity in a text message.
type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	URL    string `json:"url,omitempty"`
	User   *User  `json:"user,omitempty"`
}

// PhotoSize represents one size of a photo or thumbnail.
type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// UserProfilePhotos represents a user's profile pictures.
type UserProfilePhotos struct {
	TotalCount int           `json:"total_count"`
	Photos     [][]PhotoSize `json:"photos"`
}

// HasAny reports whether at least one profile photo was returned.
func (p *UserProfilePhotos) HasAny() bool {
	return p != nil && (p.TotalCount > 0 || len(p.Photos) > 0)
}
