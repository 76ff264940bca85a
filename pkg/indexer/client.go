// Package indexer is the client for the secondary status source used
// when the verifier is unreachable. Its answers are advisory: when the
// verifier and the indexer disagree, the verifier wins.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tachyon-hq/intent-engine/pkg/logger"
	"github.com/tachyon-hq/intent-engine/pkg/models"
)

// ErrIntentNotFound indicates the indexer has not seen the intent
var ErrIntentNotFound = errors.New("intent not found in indexer")

// Client fetches intent status records from the indexer
type Client interface {
	GetIntentStatus(ctx context.Context, intentID string) (*models.IntentStatus, error)
}

// HTTPClient talks to the indexer over REST
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates an indexer client with a bounded request timeout
func NewHTTPClient(endpoint string, timeout time.Duration, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log,
	}
}

// GetIntentStatus fetches the status record for an intent; a 404 maps
// to ErrIntentNotFound.
func (c *HTTPClient) GetIntentStatus(ctx context.Context, intentID string) (*models.IntentStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/intents/"+intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexer: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Error("Failed to close response body: %v", closeErr)
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIntentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var status models.IntentStatus
	if err := json.Unmarshal(bodyBytes, &status); err != nil {
		return nil, fmt.Errorf("failed to decode intent status: %v, body: %s", err, string(bodyBytes))
	}
	if status.IntentID == "" {
		status.IntentID = intentID
	}
	return &status, nil
}
