// Package referral verifies referral codes against the MemeIndex backend.
package referral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrUnknownCode = errors.New("referral code not recognised by backend")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type verifyResponse struct {
	ReferralCode string `json:"referralCode"`
}

// Verify asks the backend whether code exists and returns the code as the
// backend knows it.
func (c *Client) Verify(ctx context.Context, code string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/referral/%s", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("backend error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out verifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.ReferralCode == "" {
		return "", ErrUnknownCode
	}
	return out.ReferralCode, nil
}
