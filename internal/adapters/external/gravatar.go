package external

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// GravatarClient checks whether an email has an avatar registered.
type GravatarClient struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewGravatarClient creates a client against the given avatar base URL.
func NewGravatarClient(baseURL string) *GravatarClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.Logger = nil
	return &GravatarClient{baseURL: baseURL, http: client}
}

// Check performs a HEAD request for the email's avatar hash with the
// 404 fallback, so a 200 means an avatar exists.
func (c *GravatarClient) Check(ctx context.Context, email string) (bool, error) {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	avatarURL := fmt.Sprintf("%s/%s?d=404&s=1", c.baseURL, hex.EncodeToString(hash[:]))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, avatarURL, nil)
	if err != nil {
		return false, fmt.Errorf("build gravatar request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("gravatar request: %w", err)
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
