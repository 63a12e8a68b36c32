package testutil

import "github.com/prilive-com/welcomebot/tg"

// Test constants for consistent test data.
const (
	// TestToken is a valid-format bot token for testing.
	TestToken = "123456789:ABCdefGHIjklMNOpqrsTUVwxyz"

	// TestChatID is a test private chat ID.
	TestChatID = int64(123456789)

	// TestGroupID is a test supergroup chat ID.
	TestGroupID = int64(-1001234567890)

	// TestUserID is a test user ID.
	TestUserID = int64(987654321)

	// TestBotID is the bot ID encoded in TestToken.
	TestBotID = int64(123456789)

	// TestUsername is a test username.
	TestUsername = "testuser"

	// TestBotUsername is a test bot username.
	TestBotUsername = "testbot"
)

// TestUser returns a test user fixture.
func TestUser() *tg.User {
	return &tg.User{
		ID:        TestUserID,
		IsBot:     false,
		FirstName: "Test",
		LastName:  "User",
		Username:  TestUsername,
	}
}

// TestMember returns a user fixture with the given identity.
func TestMember(id int64, firstName, username string) *tg.User {
	return &tg.User{
		ID:        id,
		FirstName: firstName,
		Username:  username,
	}
}

// TestBot returns the bot's own user fixture.
func TestBot() *tg.User {
	return &tg.User{
		ID:        TestBotID,
		IsBot:     true,
		FirstName: "Test Bot",
		Username:  TestBotUsername,
	}
}

// TestChat returns a test private chat fixture.
func TestChat() *tg.Chat {
	return &tg.Chat{
		ID:        TestChatID,
		Type:      "private",
		FirstName: "Test",
		LastName:  "User",
		Username:  TestUsername,
	}
}

// TestGroupChat returns the test supergroup fixture.
func TestGroupChat() *tg.Chat {
	return &tg.Chat{
		ID:    TestGroupID,
		Type:  "supergroup",
		Title: "Test Group",
	}
}

// TestMessage returns a plain text message in the test group.
func TestMessage(messageID int, text string) *tg.Message {
	return TestMessageFrom(messageID, TestUser(), text)
}

// TestMessageFrom returns a plain text message in the test group sent by from.
func TestMessageFrom(messageID int, from *tg.User, text string) *tg.Message {
	return &tg.Message{
		MessageID: messageID,
		Date:      1234567890,
		Chat:      TestGroupChat(),
		From:      from,
		Text:      text,
	}
}

// TestCommand returns a message carrying a bot_command entity, e.g. "/joke"
// or "/joke@testbot".
func TestCommand(messageID int, command string) *tg.Message {
	msg := TestMessage(messageID, command)
	length := len(command)
	for i, r := range command {
		if r == ' ' {
			length = i
			break
		}
	}
	msg.Entities = []tg.MessageEntity{{Type: tg.EntityBotCommand, Offset: 0, Length: length}}
	return msg
}

// TestJoinMessage returns a service message announcing new members.
func TestJoinMessage(messageID int, members ...tg.User) *tg.Message {
	from := TestUser()
	if len(members) > 0 {
		from = &members[0]
	}
	return &tg.Message{
		MessageID:      messageID,
		Date:           1234567890,
		Chat:           TestGroupChat(),
		From:           from,
		NewChatMembers: members,
	}
}

// TestLeftMessage returns a service message announcing a departed member.
func TestLeftMessage(messageID int, member *tg.User) *tg.Message {
	return &tg.Message{
		MessageID:      messageID,
		Date:           1234567890,
		Chat:           TestGroupChat(),
		From:           member,
		LeftChatMember: member,
	}
}

// TestUpdate returns a test update fixture with a text message.
func TestUpdate(updateID int, text string) tg.Update {
	return tg.Update{
		UpdateID: updateID,
		Message:  TestMessage(1, text),
	}
}

// TestUpdateWithMessage returns a test update fixture with a custom message.
func TestUpdateWithMessage(updateID int, msg *tg.Message) tg.Update {
	return tg.Update{
		UpdateID: updateID,
		Message:  msg,
	}
}
