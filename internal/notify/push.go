package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/manishdhiman1/splitmateapp/internal/config"
	"github.com/manishdhiman1/splitmateapp/pkg/logger"
)

// Message is the push relay's wire shape, one entry per recipient token.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound"`
	Data  map[string]string `json:"data,omitempty"`
}

// Client posts notification batches to an Expo-compatible push relay.
// Delivery is fire and forget: the response is drained and never drives a
// retry.
type Client struct {
	endpoint string
	enabled  bool
	client   *http.Client
	log      logger.Logger
}

func NewClient(cfg config.PushConfig, log logger.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		enabled:  cfg.Enabled,
		client:   &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}
}

func (c *Client) Send(ctx context.Context, tokens []string, title, body string) error {
	if !c.enabled || len(tokens) == 0 {
		return nil
	}

	messages := make([]Message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, Message{
			To:    token,
			Title: title,
			Body:  body,
			Sound: "default",
		})
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push relay returned %d", resp.StatusCode)
	}
	return nil
}
