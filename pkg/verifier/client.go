// Package verifier is the client for the off-chain verifier/settlement
// service that accepts signed intents and reports their status.
package verifier

import (
	"bytes"
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

// Transport failures are split so callers can decide between retrying
// and treating the answer as final.
var (
	// ErrTimeout indicates the call exceeded its bounded deadline
	ErrTimeout = errors.New("verifier request timed out")

	// ErrUnreachable indicates a transport-level failure before any
	// response was received
	ErrUnreachable = errors.New("verifier unreachable")

	// ErrNotFound indicates the verifier does not know the intent
	ErrNotFound = errors.New("intent not found")
)

// TxStatusResult is the verifier's per-transaction view of a submission
type TxStatusResult struct {
	Hash      string          `json:"hash"`
	Status    models.TxStatus `json:"status"`
	TxHash    string          `json:"tx_hash,omitempty"`
	AccountID string          `json:"account_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// SimulationResult is the outcome of a dry-run with no submission
type SimulationResult struct {
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	EstimatedOutput string `json:"estimated_output,omitempty"`
	EstimatedFee    string `json:"estimated_fee,omitempty"`
}

// Client is the verifier capability the engine consumes. The HTTP
// implementation below is the production one; tests substitute mocks.
type Client interface {
	Submit(ctx context.Context, intents []models.SignedIntent) (string, error)
	GetStatus(ctx context.Context, intentHash string) (*TxStatusResult, error)
	Simulate(ctx context.Context, intents []models.IntentMessage) (*SimulationResult, error)
}

// HTTPClient talks to the verifier service over REST
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a verifier client with a bounded request timeout
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

type submitResponse struct {
	IntentHash string `json:"intent_hash"`
}

// Submit sends a batch of signed intents for settlement and returns the
// stable hash identifying the submission. Submission is never retried
// here: resubmitting a signed intent risks duplicate execution.
func (c *HTTPClient) Submit(ctx context.Context, intents []models.SignedIntent) (string, error) {
	if len(intents) == 0 {
		return "", fmt.Errorf("no signed intents to submit")
	}
	body, err := json.Marshal(map[string]interface{}{"signed_intents": intents})
	if err != nil {
		return "", fmt.Errorf("failed to encode signed intents: %v", err)
	}

	var resp submitResponse
	if err := c.post(ctx, "/v1/intents", body, &resp); err != nil {
		return "", err
	}
	if resp.IntentHash == "" {
		return "", fmt.Errorf("verifier returned empty intent hash")
	}
	return resp.IntentHash, nil
}

// GetStatus fetches the per-transaction status for a submission. This is
// an idempotent read and safe to retry.
func (c *HTTPClient) GetStatus(ctx context.Context, intentHash string) (*TxStatusResult, error) {
	var resp TxStatusResult
	if err := c.get(ctx, "/v1/intents/"+intentHash+"/status", &resp); err != nil {
		return nil, err
	}
	if resp.Hash == "" {
		resp.Hash = intentHash
	}
	return &resp, nil
}

// Simulate dry-runs a batch of intents without submitting them
func (c *HTTPClient) Simulate(ctx context.Context, intents []models.IntentMessage) (*SimulationResult, error) {
	body, err := json.Marshal(map[string]interface{}{"intents": intents})
	if err != nil {
		return nil, fmt.Errorf("failed to encode intents: %v", err)
	}
	var resp SimulationResult
	if err := c.post(ctx, "/v1/simulate", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Error("Failed to close response body: %v", closeErr)
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %v, body: %s", err, string(bodyBytes))
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
