// Package playbook triggers external automated-recovery actions over HTTP.
// The core resolves a playbook type to a configured endpoint and does not
// know what infrastructure action the playbook performs.
package playbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/metrics"
)

// ErrNotConfigured is returned when no endpoint is configured for a
// playbook type.
var ErrNotConfigured = errors.New("no endpoint configured for playbook type")

// Config holds the playbook endpoint registry and the inner HTTP retry
// behavior. The inner retry covers purely transient network errors and is
// separate from the remediation backoff schedule.
type Config struct {
	Endpoints       map[string]string `yaml:"endpoints"` // keyed by playbook type
	Timeout         time.Duration     `yaml:"timeout"`
	MaxAttempts     int               `yaml:"max_attempts"`
	InitialDelay    time.Duration     `yaml:"initial_delay"`
	MaxDelay        time.Duration     `yaml:"max_delay"`
	BackoffMultiple float64           `yaml:"backoff_multiple"`
}

// TriggerRequest is the structured payload sent to a playbook endpoint.
type TriggerRequest struct {
	TicketID   string           `json:"ticket_id"`
	ErrorKind  domain.ErrorKind `json:"error_type"`
	Metadata   map[string]any   `json:"metadata"`
	Attempt    int              `json:"retry_attempt"` // 1-based
	MaxRetries int              `json:"max_retries"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Result is a successful playbook response. NewRunID is set when the
// playbook spawned a fresh run (e.g. a pipeline rerun).
type Result struct {
	NewRunID string
	Body     map[string]any
}

// Client invokes playbook endpoints.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a playbook trigger client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = 2 * time.Second
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.BackoffMultiple == 0 {
		cfg.BackoffMultiple = 2.0
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Configured reports whether an endpoint is registered for the type.
func (c *Client) Configured(pb domain.PlaybookType) bool {
	return c.cfg.Endpoints[string(pb)] != ""
}

// Trigger invokes the playbook endpoint for the type with bounded
// exponential-backoff retries on transient errors. Client errors (4xx)
// are not retried.
func (c *Client) Trigger(
	ctx context.Context,
	pb domain.PlaybookType,
	req TriggerRequest,
) (*Result, error) {
	endpoint := c.cfg.Endpoints[string(pb)]
	if endpoint == "" {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	defer func() {
		metrics.PlaybookLatency.WithLabelValues(string(pb)).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		result, retryable, err := c.post(ctx, endpoint, req)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt == c.cfg.MaxAttempts-1 {
			break
		}

		delay := c.backoff(attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

// post makes a single trigger call. The second return value reports
// whether the failure is worth retrying.
func (c *Client) post(
	ctx context.Context,
	endpoint string,
	req TriggerRequest,
) (*Result, bool, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("playbook call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(string(body), 500))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, true, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(string(body), 500))
	}

	var parsed map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, false, fmt.Errorf("parse response: %w", err)
		}
	}

	result := &Result{Body: parsed}
	if v, ok := parsed["new_run_id"].(string); ok && v != "" {
		result.NewRunID = v
	} else if v, ok := parsed["run_id"].(string); ok && v != "" {
		result.NewRunID = v
	}

	return result, false, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.cfg.InitialDelay) * math.Pow(c.cfg.BackoffMultiple, float64(attempt))
	if delay > float64(c.cfg.MaxDelay) {
		delay = float64(c.cfg.MaxDelay)
	}
	return time.Duration(delay)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
