// internal/centrifugo/client.go
package centrifugo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/domain"
)

const (
	attemptTimeout  = 30 * time.Second
	initialInterval = 500 * time.Millisecond
	maxInterval     = 10 * time.Second
	maxAttempts     = 20
)

// LobbyBrowserChannel is the global lobby-discovery channel.
const LobbyBrowserChannel = "lobby_browser"

// UserChannel is the per-user private channel.
func UserChannel(userID domain.UserID) string {
	return "#" + userID.Hex()
}

func LobbyChannel(lobbyID domain.LobbyID) string {
	return "lobbies:" + lobbyID.Hex()
}

func GameChannel(gameID domain.GameID) string {
	return "games:" + gameID.Hex()
}

// Command is one entry of a batch request: either a publication or a
// per-user unsubscribe.
type Command struct {
	Publish     *PublishCommand     `json:"publish,omitempty"`
	Unsubscribe *UnsubscribeCommand `json:"unsubscribe,omitempty"`
}

type PublishCommand struct {
	Channel string `json:"channel"`
	Data    any    `json:"data"`
}

type UnsubscribeCommand struct {
	User    string `json:"user"`
	Channel string `json:"channel"`
}

// NewPublish builds a publish batch entry.
func NewPublish(channel string, data any) Command {
	return Command{Publish: &PublishCommand{Channel: channel, Data: data}}
}

// NewUnsubscribe builds an unsubscribe batch entry.
func NewUnsubscribe(userID domain.UserID, channel string) Command {
	return Command{Unsubscribe: &UnsubscribeCommand{User: userID.Hex(), Channel: channel}}
}

// Client talks to the Centrifugo server HTTP API. Calls are retried
// with exponential backoff; on exhaustion the error surfaces to the
// caller.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	log        *logrus.Logger
}

func NewClient(url, apiKey string, log *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: attemptTimeout},
		url:        strings.TrimRight(url, "/"),
		apiKey:     apiKey,
		log:        log,
	}
}

// Publish sends one publication to a channel.
func (c *Client) Publish(ctx context.Context, channel string, data any) error {
	return c.send(ctx, "publish", PublishCommand{Channel: channel, Data: data})
}

// Batch sends a list of commands in one request. With parallel the
// server applies them concurrently; order across commands is then
// unspecified.
func (c *Client) Batch(ctx context.Context, commands []Command, parallel bool) error {
	if len(commands) == 0 {
		return nil
	}
	payload := struct {
		Commands []Command `json:"commands"`
		Parallel bool      `json:"parallel"`
	}{Commands: commands, Parallel: parallel}
	return c.send(ctx, "batch", payload)
}

func (c *Client) send(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("centrifugo %s: marshal: %w", method, err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval

	attempt := 0
	operation := func() error {
		attempt++
		if err := c.post(ctx, method, body); err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"method":  method,
				"attempt": attempt,
			}).Warn("centrifugo request failed")
			return err
		}
		return nil
	}
	err = backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(bo, maxAttempts-1), ctx,
	))
	if err != nil {
		return fmt.Errorf("centrifugo %s: %w", method, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
