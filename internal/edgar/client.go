// Package edgar reads filing indexes from SEC EDGAR and keeps the filings
// table of each SPAC in sync with them.
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"spacos/internal/logger"
	"spacos/internal/observability"
)

const (
	DefaultBaseURL = "https://data.sec.gov"
	ArchiveBaseURL = "https://www.sec.gov/Archives/edgar/data"

	// SEC fair-access policy allows 10 requests per second.
	DefaultRateLimit = 10

	maxResponseBytes = 32 << 20
)

var (
	ErrInvalidCIK = errors.New("invalid CIK")
	ErrNotFound   = errors.New("CIK not found on EDGAR")
	ErrUpstream   = errors.New("EDGAR request failed")
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	UserAgent string // SEC requires a descriptive User-Agent with a contact address
	Timeout   time.Duration
	CacheTTL  time.Duration
	RateLimit float64
}

// Submissions is the subset of the EDGAR submissions document we use.
type Submissions struct {
	CIK     string   `json:"cik"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings struct {
		Recent RecentBlock `json:"recent"`
	} `json:"filings"`
}

// RecentBlock is EDGAR's columnar list of recent filings: entry i of every
// slice describes the same filing.
type RecentBlock struct {
	AccessionNumber       []string `json:"accessionNumber"`
	FilingDate            []string `json:"filingDate"`
	ReportDate            []string `json:"reportDate"`
	Form                  []string `json:"form"`
	PrimaryDocument       []string `json:"primaryDocument"`
	PrimaryDocDescription []string `json:"primaryDocDescription"`
}

// Client fetches EDGAR submissions with caching and rate limiting.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	cache      *cache.Cache
	limiter    *rate.Limiter
	metrics    *observability.Metrics
}

// NewClient creates an EDGAR client. A nil httpClient gets a default one.
func NewClient(cfg Config, httpClient *http.Client, metrics *observability.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.RateLimit <= 0 || cfg.RateLimit > DefaultRateLimit {
		cfg.RateLimit = DefaultRateLimit
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger.Named("edgar").Infow("EDGAR client initialized",
		"base_url", cfg.BaseURL,
		"cache_ttl", cfg.CacheTTL,
		"rate_limit", cfg.RateLimit)

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		cache:      cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		metrics:    metrics,
	}
}

// NormalizeCIK zero-pads a CIK to the ten digits EDGAR uses in paths.
func NormalizeCIK(cik string) (string, error) {
	cik = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(cik)), "CIK"))
	if cik == "" || len(cik) > 10 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCIK, cik)
	}
	for _, r := range cik {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCIK, cik)
		}
	}
	return strings.Repeat("0", 10-len(cik)) + cik, nil
}

// Submissions returns the submissions document for cik, from cache when
// fresh.
func (c *Client) Submissions(ctx context.Context, cik string) (*Submissions, error) {
	padded, err := NormalizeCIK(cik)
	if err != nil {
		return nil, err
	}
	cacheKey := "submissions:" + padded

	if cached, found := c.cache.Get(cacheKey); found {
		if sub, ok := cached.(*Submissions); ok {
			c.metrics.RecordEdgarCache(true)
			logger.Named("edgar").Debugw("EDGAR submissions cache hit", "cik", padded)
			return sub, nil
		}
	}
	c.metrics.RecordEdgarCache(false)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for EDGAR rate limit: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.baseURL, padded)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, padded)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	var sub Submissions
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&sub); err != nil {
		return nil, fmt.Errorf("%w: decoding submissions: %v", ErrUpstream, err)
	}

	c.cache.Set(cacheKey, &sub, cache.DefaultExpiration)
	logger.Named("edgar").Debugw("EDGAR submissions cached",
		"cik", padded, "recent_filings", len(sub.Filings.Recent.AccessionNumber))
	return &sub, nil
}

// Filing is one flattened row of the recent block.
type Filing struct {
	AccessionNumber string
	Form            string
	FilingDate      time.Time
	ReportDate      *time.Time
	PrimaryDocument string
	Description     string
	URL             string
}

// RecentFilings flattens the columnar recent block into rows. When forms is
// non-empty only those form types are kept. Columns of unequal length are
// an error.
func RecentFilings(sub *Submissions, forms ...string) ([]Filing, error) {
	r := sub.Filings.Recent
	n := len(r.AccessionNumber)
	for name, col := range map[string]int{
		"filingDate": len(r.FilingDate),
		"form":       len(r.Form),
	} {
		if col != n {
			return nil, fmt.Errorf("%w: column %s has %d entries, accessionNumber has %d", ErrUpstream, name, col, n)
		}
	}

	keep := make(map[string]bool, len(forms))
	for _, f := range forms {
		keep[f] = true
	}

	cikNum, _ := strconv.ParseInt(strings.TrimLeft(sub.CIK, "0"), 10, 64)

	out := make([]Filing, 0, n)
	for i := 0; i < n; i++ {
		if len(keep) > 0 && !keep[r.Form[i]] {
			continue
		}
		filed, err := time.Parse(time.DateOnly, r.FilingDate[i])
		if err != nil {
			return nil, fmt.Errorf("%w: filing %s: bad filingDate %q", ErrUpstream, r.AccessionNumber[i], r.FilingDate[i])
		}
		f := Filing{
			AccessionNumber: r.AccessionNumber[i],
			Form:            r.Form[i],
			FilingDate:      filed,
			PrimaryDocument: column(r.PrimaryDocument, i),
			Description:     column(r.PrimaryDocDescription, i),
		}
		if rd := column(r.ReportDate, i); rd != "" {
			if t, err := time.Parse(time.DateOnly, rd); err == nil {
				f.ReportDate = &t
			}
		}
		f.URL = ArchiveURL(cikNum, f.AccessionNumber, f.PrimaryDocument)
		out = append(out, f)
	}
	return out, nil
}

func column(col []string, i int) string {
	if i < len(col) {
		return col[i]
	}
	return ""
}

// ArchiveURL builds the sec.gov archive link of a filing document, or of the
// filing index when the primary document is unknown.
func ArchiveURL(cik int64, accession, primaryDocument string) string {
	folder := strings.ReplaceAll(accession, "-", "")
	if primaryDocument == "" {
		return fmt.Sprintf("%s/%d/%s/%s-index.htm", ArchiveBaseURL, cik, folder, accession)
	}
	return fmt.Sprintf("%s/%d/%s/%s", ArchiveBaseURL, cik, folder, primaryDocument)
}
