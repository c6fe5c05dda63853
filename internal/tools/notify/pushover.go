// Package notify provides the send_notification tool backed by the Pushover
// push API.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

const defaultEndpoint = "https://api.pushover.net/1/messages.json"

// Client sends push notifications via Pushover.
type Client struct {
	token      string
	userKey    string
	endpoint   string
	httpClient *http.Client
}

type Option func(*Client)

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(token, userKey string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		userKey:    userKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push sends one notification.
func (c *Client) Push(ctx context.Context, message string) error {
	form := url.Values{
		"token":   {c.token},
		"user":    {c.userKey},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push API returned %d", resp.StatusCode)
	}
	return nil
}

// NewNotificationTool creates the send_notification tool. Delivery is
// fire-and-forget: the tool reports the send as accepted immediately and the
// push happens in the background, so a slow push gateway never stalls a turn.
func NewNotificationTool(client *Client) engine.Tool {
	return engine.Tool{
		Name:        "send_notification",
		Description: "Sends a brief push notification to the user's device. Use for important updates or when a long task completes.",
		SchemaJSON:  `{"type":"object","properties":{"message":{"type":"string","description":"The notification text"}},"required":["message"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			message, ok := args["message"].(string)
			if !ok || strings.TrimSpace(message) == "" {
				return "", fmt.Errorf("message must be a non-empty string")
			}

			go func() {
				pushCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := client.Push(pushCtx, message); err != nil {
					log.Printf("notification delivery failed: %v", err)
				}
			}()

			return "notification queued", nil
		},
		// Re-sending would duplicate the notification.
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "notify",
		},
	}
}
