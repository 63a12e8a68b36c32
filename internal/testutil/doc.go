// Package testutil provides testing utilities for welcomebot.
//
// This package is intended for internal testing only and should not be imported
// by external packages.
//
// # Mock Telegram Server
//
// MockTelegramServer provides a mock Telegram Bot API server for testing:
//
//	server := testutil.NewMockServer(t)
//	server.OnAPI("sendSticker", func(w http.ResponseWriter, r *http.Request) {
//	    testutil.ReplySticker(w, 123, "CAACAgIAAxkBAAE")
//	})
//	// Use server.BaseURL() as the API base URL
//
// # Request Capture
//
// All requests are automatically captured and can be inspected:
//
//	calls := server.CapturesFor("sendMessage")
//	calls[0].AssertJSONField(t, "parse_mode", "HTML")
//
// # Fake Sleeper
//
// FakeSleeper records sleep calls without actually sleeping:
//
//	sleeper := &testutil.FakeSleeper{}
//	// Pass to client via WithSleeper option
//	assert.Equal(t, 2*time.Second, sleeper.LastCall())
//
// # Test Fixtures
//
// Common test data is available:
//
//	testutil.TestToken    // Valid bot token format
//	testutil.TestGroupID              // Supergroup the fixtures live in
//	testutil.TestCommand(1, "/joke")  // Message with a bot_command entity
//	testutil.TestJoinMessage(2, user) // new_chat_members service message
package testutil
