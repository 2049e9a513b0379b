package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chdsbd/eve/internal/httpx"
)

const defaultBaseURL = "https://slack.com"

// DispatchError reports a non-success status from chat.postMessage.
type DispatchError struct {
	Status int
	Body   string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("message dispatch returned status %d: %s", e.Status, e.Body)
}

// Client posts messages through the Slack Web API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Slack client against the public Web API.
func NewClient(httpClient *http.Client) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		HTTPClient: httpClient,
	}
}

// PostMessage delivers a rendered payload to one recipient. Delivery is
// judged by HTTP status alone; the `ok` field Slack embeds in 200 bodies is
// not inspected, so an in-band rejection passes silently.
// https://api.slack.com/methods/chat.postMessage
func (c *Client) PostMessage(ctx context.Context, token, channel string, blocks []Block) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"blocks":  blocks,
	})
	if err != nil {
		return &DispatchError{Status: 0, Body: "unencodable message payload: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return &httpx.TransportError{Op: "message dispatch", Err: err}
	}

	req.Header.Set("User-Agent", httpx.UserAgent)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &httpx.TransportError{Op: "message dispatch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &DispatchError{Status: resp.StatusCode, Body: string(body)}
	}

	return nil
}
