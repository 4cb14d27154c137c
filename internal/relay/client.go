// Package relay posts order messages to the Telegram Bot API.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNotConfigured means the bot token or chat id is missing.
var ErrNotConfigured = errors.New("chat relay credentials are not configured")

type Client struct {
	apiURL     string
	token      string
	chatID     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(apiURL, token, chatID string, logger *logrus.Logger) *Client {
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		chatID: chatID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// WithHTTPClient replaces the transport, e.g. for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Configured() bool {
	return c.token != "" && c.chatID != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// SendMessage posts text as one HTML message and returns its message id.
// It makes a single attempt.
func (c *Client) SendMessage(ctx context.Context, text string) (int64, error) {
	if !c.Configured() {
		return 0, ErrNotConfigured
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return 0, errors.Wrap(err, "marshal message")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the token; keep it out of the error.
		return 0, errors.New("chat api request failed: " + redact(err.Error(), c.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, errors.Wrap(err, "read chat api response")
	}
	var out sendMessageResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, errors.Wrapf(err, "decode chat api response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 || !out.OK {
		desc := out.Description
		if desc == "" {
			desc = "Unknown error"
		}
		c.logger.WithFields(logrus.Fields{"status": resp.StatusCode, "description": desc}).Error("relay.send.fail")
		return 0, errors.Errorf("chat api error: %s", desc)
	}

	c.logger.WithField("message_id", out.Result.MessageID).Info("relay.send.ok")
	return out.Result.MessageID, nil
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "<redacted>")
}
