// Package scoring is the HTTP client for the external AI deal-scoring
// endpoint.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"spacos/internal/logger"
	"spacos/internal/observability"
)

const maxResponseBytes = 1 << 20

var (
	// ErrUpstream is returned when the endpoint answers with a non-2xx status.
	ErrUpstream = errors.New("scoring endpoint error")
	// ErrInvalidResponse is returned when the payload cannot be decoded or a
	// score lies outside 0-100.
	ErrInvalidResponse = errors.New("invalid scoring response")
	// ErrNotConfigured is returned when no endpoint URL is set.
	ErrNotConfigured = errors.New("scoring endpoint not configured")
)

// StatusError carries the upstream status code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scoring endpoint returned status %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrUpstream }

// Config configures a Client.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
}

// Request describes the target to score.
type Request struct {
	TargetID        string `json:"target_id"`
	Name            string `json:"name"`
	Industry        string `json:"industry,omitempty"`
	Description     string `json:"description,omitempty"`
	Headquarters    string `json:"headquarters,omitempty"`
	EnterpriseValue string `json:"enterprise_value,omitempty"`
	Stage           string `json:"stage,omitempty"`
	SPACName        string `json:"spac_name,omitempty"`
}

// Categories are the optional sub-scores.
type Categories struct {
	Management  *int `json:"management,omitempty"`
	Market      *int `json:"market,omitempty"`
	Financial   *int `json:"financial,omitempty"`
	Operational *int `json:"operational,omitempty"`
	Transaction *int `json:"transaction,omitempty"`
}

// Result is a validated scoring response.
type Result struct {
	OverallScore int        `json:"overall_score"`
	Categories   Categories `json:"categories"`
	Thesis       string     `json:"thesis"`
	Model        string     `json:"model"`

	// Raw is the undecoded response body, kept for the score history.
	Raw json.RawMessage `json:"-"`
}

// Validate checks that every present score lies in 0-100.
func (r *Result) Validate() error {
	if err := checkRange("overall", &r.OverallScore); err != nil {
		return err
	}
	for name, v := range map[string]*int{
		"management":  r.Categories.Management,
		"market":      r.Categories.Market,
		"financial":   r.Categories.Financial,
		"operational": r.Categories.Operational,
		"transaction": r.Categories.Transaction,
	} {
		if err := checkRange(name, v); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(name string, v *int) error {
	if v != nil && (*v < 0 || *v > 100) {
		return fmt.Errorf("%w: %s score %d out of range", ErrInvalidResponse, name, *v)
	}
	return nil
}

// Client calls the scoring endpoint under a rate limit.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
}

// NewClient creates a scoring client. A nil httpClient gets a default one.
func NewClient(cfg Config, httpClient *http.Client, metrics *observability.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		metrics:    metrics,
	}
}

// Configured reports whether an endpoint URL is set.
func (c *Client) Configured() bool { return c.baseURL != "" }

// Score asks the endpoint to evaluate a target. It waits for the rate
// limiter, so a cancelled ctx returns early without calling out.
func (c *Client) Score(ctx context.Context, in Request) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for scoring rate limit: %w", err)
	}

	start := time.Now()
	result, err := c.do(ctx, in)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.ObserveScoringCall(outcome, time.Since(start))

	if err != nil {
		logger.Named("scoring").Warnw("Scoring request failed",
			"target_id", in.TargetID, "elapsed", time.Since(start), "error", err)
		return nil, err
	}
	logger.Named("scoring").Debugw("Scoring request completed",
		"target_id", in.TargetID, "overall_score", result.OverallScore, "elapsed", time.Since(start))
	return result, nil
}

func (c *Client) do(ctx context.Context, in Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshaling scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling scoring endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading scoring response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}
