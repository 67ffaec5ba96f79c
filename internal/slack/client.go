package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// APIError is a chat API refusal, carrying the machine-readable error
// code from the response body (for example "invalid_auth" or
// "rate_limited").
type APIError struct {
	Code string
}

func (e *APIError) Error() string {
	return e.Code
}

// Client posts messages to a Slack-compatible chat API. The token is
// passed per call because it lives in mutable settings.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
	}
}

// PostMessage sends one message to chat.postMessage. A response with
// ok=false becomes an *APIError with the reported code.
func (c *Client) PostMessage(ctx context.Context, token string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &apiResp); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("post message: unexpected status %d", resp.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if !apiResp.OK {
		code := apiResp.Error
		if code == "" {
			code = "unknown_error"
		}
		return &APIError{Code: code}
	}

	return nil
}
