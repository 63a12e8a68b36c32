package sender

import (
	"context"
	"encoding/json"
	"fmt"
)

// callJSON is the single path for every API call: rate limit, breaker and
// retry, then JSON decoding of the result into out (nil for void methods).
func (c *Client) callJSON(ctx context.Context, method string, payload any, out any, chatID string) error {
	resp, err := withRetry(c, ctx, func() (*apiResponse, error) {
		return c.executeRequest(ctx, method, payload, chatID)
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("welcomebot: %s: failed to parse response: %w", method, err)
	}
	return nil
}

// callJSONResult is a generic version for cleaner call sites.
//
//	set, err := callJSONResult[tg.StickerSet](c, ctx, "getStickerSet", req, "")
func callJSONResult[T any](c *Client, ctx context.Context, method string, payload any, chatID string) (T, error) {
	var result T
	if err := c.callJSON(ctx, method, payload, &result, chatID); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
