// Package featureconfig implements the HTTP client for the external feature
// configuration service.
package featureconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finverse/accessgate/models"
)

// Client talks to the feature configuration service. The service returns
// the complete toggle set on every call; there is no delta API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new feature configuration client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListToggles retrieves the full feature toggle set
func (c *Client) ListToggles(ctx context.Context) ([]models.FeatureToggle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/toggles", nil)
	if err != nil {
		return nil, fmt.Errorf("create toggles request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list toggles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list toggles: unexpected status %d", resp.StatusCode)
	}

	var toggles []models.FeatureToggle
	if err := json.NewDecoder(resp.Body).Decode(&toggles); err != nil {
		return nil, fmt.Errorf("decode toggles response: %w", err)
	}

	return toggles, nil
}
