package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/core"
)

// StopForumSpamClient queries the StopForumSpam reputation database
// for previously-reported emails and IPs.
type StopForumSpamClient struct {
	baseURL string
	http    *retryablehttp.Client
}

type sfsResponse struct {
	Success int       `json:"success"`
	Email   *sfsEntry `json:"email,omitempty"`
	IP      *sfsEntry `json:"ip,omitempty"`
}

type sfsEntry struct {
	Appears    int     `json:"appears"`
	Confidence float64 `json:"confidence"`
	Frequency  int     `json:"frequency"`
}

// NewStopForumSpamClient creates a client against the given API base URL.
func NewStopForumSpamClient(baseURL string, logger *zap.Logger) *StopForumSpamClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	return &StopForumSpamClient{baseURL: baseURL, http: client}
}

// CheckEmail looks up an email address.
func (c *StopForumSpamClient) CheckEmail(ctx context.Context, email string) (core.ExternalCheckResult, error) {
	return c.query(ctx, url.Values{"email": {email}, "json": {""}}, func(r *sfsResponse) *sfsEntry { return r.Email })
}

// CheckIP looks up an IP address.
func (c *StopForumSpamClient) CheckIP(ctx context.Context, ip string) (core.ExternalCheckResult, error) {
	return c.query(ctx, url.Values{"ip": {ip}, "json": {""}}, func(r *sfsResponse) *sfsEntry { return r.IP })
}

func (c *StopForumSpamClient) query(ctx context.Context, params url.Values, pick func(*sfsResponse) *sfsEntry) (core.ExternalCheckResult, error) {
	result := core.ExternalCheckResult{}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return result, fmt.Errorf("build stopforumspam request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return result, fmt.Errorf("stopforumspam request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("stopforumspam returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return result, fmt.Errorf("read stopforumspam response: %w", err)
	}

	var parsed sfsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return result, fmt.Errorf("decode stopforumspam response: %w", err)
	}
	if parsed.Success != 1 {
		return result, fmt.Errorf("stopforumspam lookup unsuccessful")
	}

	result.Checked = true
	if entry := pick(&parsed); entry != nil && entry.Appears == 1 {
		result.Flagged = true
		result.Confidence = entry.Confidence
		result.Frequency = entry.Frequency
	}
	return result, nil
}
