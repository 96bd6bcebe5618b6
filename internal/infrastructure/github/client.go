// Package github is the remote code-review API client. Responses are mapped
// straight into domain types; nothing here is cached, every fetch is fresh.
package github

import (
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

const DefaultBaseURL = "https://api.github.com"

type Client struct {
	httpc   *http.Client
	baseURL string
	token   string
	timeout time.Duration
	log     *zap.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   token,
		timeout: timeout,
		log:     log,
	}
}

func (c *Client) FetchPR(ctx context.Context, owner, repo string, number int) (ptal.PRDetail, error) {
	var resp prResponse
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, owner, repo, number)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return ptal.PRDetail{}, err
	}

	return ptal.PRDetail{
		Title:          resp.Title,
		Draft:          resp.Draft,
		Merged:         resp.Merged,
		Mergeable:      resp.Mergeable,
		MergeableState: resp.MergeableState,
	}, nil
}

func (c *Client) FetchReviews(ctx context.Context, owner, repo string, number int) ([]ptal.RawReview, error) {
	var resp []reviewResponse
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews?per_page=100", c.baseURL, owner, repo, number)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	out := make([]ptal.RawReview, 0, len(resp))
	for _, r := range resp {
		var author string
		if r.User != nil {
			author = r.User.Login
		}
		out = append(out, ptal.RawReview{Author: author, State: r.State})
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return domain.NotFoundError("pull request not found")
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("github responded %d", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("github responded %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return json.Unmarshal(body, out)
	})

	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) {
		return err
	}

	c.log.Warn("github fetch failed", zap.String("url", url), zap.Error(err))
	return domain.TransientError("github fetch failed", err)
}
