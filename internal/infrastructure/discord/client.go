// Package discord is the chat-surface client the announcements are rendered
// on. Only the message CRUD the engine needs is implemented.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"ptalsvc/internal/domain"
	"ptalsvc/internal/domain/ptal"
)

const DefaultBaseURL = "https://discord.com/api/v10"

type Client struct {
	httpc   *http.Client
	baseURL string
	token   string
	timeout time.Duration
	log     *zap.Logger
}

func NewClient(baseURL, botToken string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   botToken,
		timeout: timeout,
		log:     log,
	}
}

func (c *Client) SendMessage(ctx context.Context, channelID string, payload ptal.DisplayPayload) (string, error) {
	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)

	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, url, wireMessage(payload), &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// FetchMessage only probes existence; the engine never reads its own prior
// render back.
func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) error {
	url := fmt.Sprintf("%s/channels/%s/messages/%s", c.baseURL, channelID, messageID)
	return c.do(ctx, http.MethodGet, url, nil, nil)
}

func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, payload ptal.DisplayPayload) error {
	url := fmt.Sprintf("%s/channels/%s/messages/%s", c.baseURL, channelID, messageID)
	return c.do(ctx, http.MethodPatch, url, wireMessage(payload), nil)
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	url := fmt.Sprintf("%s/channels/%s/messages/%s", c.baseURL, channelID, messageID)
	err := c.do(ctx, http.MethodDelete, url, nil, nil)
	if domain.IsNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			buf, err := json.Marshal(body)
			if err != nil {
				return err
			}
			reader = bytes.NewReader(buf)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return domain.NotFoundError("message not found")
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("discord responded %d", resp.StatusCode))
		case resp.StatusCode >= 300:
			return fmt.Errorf("discord responded %d", resp.StatusCode)
		}

		if out == nil {
			return nil
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return json.Unmarshal(data, out)
	})

	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) {
		return err
	}

	c.log.Warn("discord call failed", zap.String("url", url), zap.Error(err))
	return domain.TransientError("discord call failed", err)
}
