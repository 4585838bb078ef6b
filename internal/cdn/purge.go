// Package cdn purges pages from the edge cache in front of the site.
package cdn

import (
	"context"
	"fmt"
	"go-success-stories/internal/logger"
	"net/http"
	"time"
)

// MethodPurge is the HTTP method the edge cache accepts for invalidation.
const MethodPurge = "PURGE"

// Client issues PURGE requests against the public site origin.
type Client struct {
	siteURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

// New creates a Client for siteURL (e.g. "https://www.python.org").
// An empty apiKey disables purging.
func New(siteURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		siteURL:    siteURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With(map[string]interface{}{"component": "cdn"}),
	}
}

// Enabled reports whether purge requests are sent.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Purge invalidates path. Failures are logged and otherwise ignored.
func (c *Client) Purge(ctx context.Context, path string) {
	if !c.Enabled() {
		c.log.Debug(fmt.Sprintf("cdn purge disabled, skipping %s", path))
		return
	}
	if err := c.purge(ctx, path); err != nil {
		c.log.Error(err, fmt.Sprintf("Failed to purge %s", path))
	}
}

func (c *Client) purge(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, MethodPurge, c.siteURL+path, nil)
	if err != nil {
		return fmt.Errorf("cdn: create request: %w", err)
	}
	req.Header.Set("Fastly-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cdn: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cdn: unexpected status %d", resp.StatusCode)
	}
	return nil
}
