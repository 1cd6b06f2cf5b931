// Package remote reads project definitions from the management API. The API
// is the source of truth; this client only ever reads from it.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/inkeep/agents-sub000/internal/definition"
)

// Client calls the management API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an API client with a request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GetFullDefinition fetches the complete definition of one project,
// validated and decoded into its typed form.
func (c *Client) GetFullDefinition(ctx context.Context, projectID string) (*definition.Definition, error) {
	endpoint, err := url.JoinPath(c.baseURL, "projects", projectID, "full")
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", c.baseURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build definition request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("definition request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read definition response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("definition request for %s returned %d: %s",
			projectID, resp.StatusCode, snippet(body))
	}

	def, err := definition.Decode(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched remote definition",
		zap.String("project", projectID),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return def, nil
}

func snippet(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
