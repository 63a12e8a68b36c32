package testutil

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// TelegramEnvelope is the standard Telegram API response format.
type TelegramEnvelope struct {
	OK          bool        `json:"ok"`
	Result      any         `json:"result,omitempty"`
	ErrorCode   int         `json:"error_code,omitempty"`
	Description string      `json:"description,omitempty"`
	Parameters  *Parameters `json:"parameters,omitempty"`
}

// Parameters contains optional error parameters (e.g., retry_after).
type Parameters struct {
	RetryAfter      int   `json:"retry_after,omitempty"`
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
}

// ReplyOK writes a successful Telegram API response.
func ReplyOK(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TelegramEnvelope{
		OK:     true,
		Result: result,
	})
}

// ReplyError writes a Telegram API error response.
func ReplyError(w http.ResponseWriter, code int, description string, params *Parameters) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TelegramEnvelope{
		OK:          false,
		ErrorCode:   code,
		Description: description,
		Parameters:  params,
	})
}

// ReplyRateLimit writes a 429 rate limit response with retry_after in both JSON and HTTP header.
func ReplyRateLimit(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	ReplyError(w, 429, "Too Many Requests: retry after "+strconv.Itoa(retryAfter), &Parameters{
		RetryAfter: retryAfter,
	})
}

// ReplyRateLimitHeaderOnly writes a 429 rate limit response with retry_after ONLY in HTTP header.
// Useful for testing HTTP header fallback parsing.
func ReplyRateLimitHeaderOnly(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	ReplyError(w, 429, "Too Many Requests: retry after "+strconv.Itoa(retryAfter), nil)
}

// ReplyServerError writes a 5xx server error response.
func ReplyServerError(w http.ResponseWriter, code int, description string) {
	ReplyError(w, code, description, nil)
}

// ReplyBadRequest writes a 400 bad request error.
func ReplyBadRequest(w http.ResponseWriter, description string) {
	ReplyError(w, 400, "Bad Request: "+description, nil)
}

// ReplyForbidden writes a 403 forbidden error (e.g., bot blocked).
func ReplyForbidden(w http.ResponseWriter, description string) {
	ReplyError(w, 403, "Forbidden: "+description, nil)
}

// ReplyNotFound writes a 404 not found error.
func ReplyNotFound(w http.ResponseWriter, description string) {
	ReplyError(w, 404, "Not Found: "+description, nil)
}

// ReplyMessage writes a successful message response.
func ReplyMessage(w http.ResponseWriter, messageID int) {
	ReplyOK(w, map[string]any{
		"message_id": messageID,
		"date":       1234567890,
		"chat": map[string]any{
			"id":   TestChatID,
			"type": "private",
		},
		"text": "Test message",
	})
}

// ReplyMessageWithChat writes a successful message response for a specific chat.
// Negative chat IDs are reported as supergroups.
func ReplyMessageWithChat(w http.ResponseWriter, messageID int, chatID int64) {
	chatType := "private"
	if chatID < 0 {
		chatType = "supergroup"
	}
	ReplyOK(w, map[string]any{
		"message_id": messageID,
		"date":       1234567890,
		"chat": map[string]any{
			"id":   chatID,
			"type": chatType,
		},
		"text": "Test message",
	})
}

// ReplyBool writes a successful boolean response (sendChatAction, deleteWebhook).
func ReplyBool(w http.ResponseWriter, result bool) {
	ReplyOK(w, result)
}

// ReplyUpdates writes a successful getUpdates response.
func ReplyUpdates(w http.ResponseWriter, updates []map[string]any) {
	ReplyOK(w, updates)
}

// ReplyEmptyUpdates writes an empty getUpdates response.
func ReplyEmptyUpdates(w http.ResponseWriter) {
	ReplyOK(w, []map[string]any{})
}

// ReplyUser writes a successful getMe response.
func ReplyUser(w http.ResponseWriter) {
	ReplyOK(w, map[string]any{
		"id":         TestBotID,
		"is_bot":     true,
		"first_name": "Test Bot",
		"username":   "testbot",
	})
}

// ReplySticker writes a successful sendSticker response.
func ReplySticker(w http.ResponseWriter, messageID int, fileID string) {
	ReplyOK(w, map[string]any{
		"message_id": messageID,
		"date":       1234567890,
		"chat": map[string]any{
			"id":   TestGroupID,
			"type": "supergroup",
		},
		"sticker": map[string]any{
			"file_id":        fileID,
			"file_unique_id": "u_" + fileID,
			"type":           "regular",
			"width":          512,
			"height":         512,
			"is_animated":    false,
			"is_video":       false,
		},
	})
}

// ReplyStickerSet writes a successful getStickerSet response containing fileIDs.
func ReplyStickerSet(w http.ResponseWriter, name string, fileIDs ...string) {
	stickers := make([]map[string]any, 0, len(fileIDs))
	for _, id := range fileIDs {
		stickers = append(stickers, map[string]any{
			"file_id":        id,
			"file_unique_id": "u_" + id,
			"type":           "regular",
			"width":          512,
			"height":         512,
			"is_animated":    false,
			"is_video":       false,
			"set_name":       name,
		})
	}
	ReplyOK(w, map[string]any{
		"name":         name,
		"title":        name,
		"sticker_type": "regular",
		"stickers":     stickers,
	})
}

// ReplyMemberCount writes a successful getChatMemberCount response.
func ReplyMemberCount(w http.ResponseWriter, count int) {
	ReplyOK(w, count)
}

// ReplyProfilePhotos writes a successful getUserProfilePhotos response with
// count single-size photos.
func ReplyProfilePhotos(w http.ResponseWriter, count int) {
	photos := make([][]map[string]any, 0, count)
	for i := range count {
		photos = append(photos, []map[string]any{{
			"file_id":        "photo_" + strconv.Itoa(i),
			"file_unique_id": "uphoto_" + strconv.Itoa(i),
			"width":          160,
			"height":         160,
		}})
	}
	ReplyOK(w, map[string]any{
		"total_count": count,
		"photos":      photos,
	})
}
