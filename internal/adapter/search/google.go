package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sourcehound/internal/domain"
	"sourcehound/internal/infra/config"
)

const (
	// maxPageSize is the hard per-call cap of the Custom Search JSON API.
	maxPageSize = 10

	maxSearchBodySize = 512 * 1024 // 512KB
)

// GoogleProvider implements domain.SearchProvider against the Google
// Programmable Search (Custom Search JSON) API.
type GoogleProvider struct {
	client   *http.Client
	apiKey   string
	engineID string
	baseURL  string
	logger   *slog.Logger
}

// NewGoogleProvider creates a Google search provider. cfg.BaseURL may be set
// to point at a test server; it defaults to the public API endpoint.
func NewGoogleProvider(cfg config.SearchConfig, logger *slog.Logger) *GoogleProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/customsearch/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &GoogleProvider{
		client:   &http.Client{Timeout: timeout},
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (p *GoogleProvider) Name() string { return "google" }

// googleResponse models the relevant portion of the Custom Search response.
type googleResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
	Queries struct {
		NextPage []struct {
			StartIndex int `json:"startIndex"`
		} `json:"nextPage"`
	} `json:"queries"`
}

// Search fetches one page of results. start is 1-based; num is clamped to the
// API's 10-per-page cap. An empty slice means the result set is exhausted.
func (p *GoogleProvider) Search(ctx context.Context, query string, num, start int) ([]domain.SearchResult, error) {
	if num <= 0 || num > maxPageSize {
		num = maxPageSize
	}
	if start < 1 {
		start = 1
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("key", p.apiKey)
	q.Set("cx", p.engineID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))
	q.Set("start", strconv.Itoa(start))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, mapStatusError(resp.StatusCode, body)
	}

	var gResp googleResponse
	if err := json.Unmarshal(body, &gResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(gResp.Items))
	for _, item := range gResp.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
		})
	}

	p.logger.Debug("google search page completed",
		"query", query, "start", start, "results", len(results))
	return results, nil
}

// mapStatusError maps a Custom Search HTTP status to a domain sentinel, so
// callers can distinguish credential, quota and request-shape failures.
func mapStatusError(statusCode int, body []byte) error {
	detail := fmt.Sprintf("search API error %d: %s", statusCode, string(body))

	switch {
	case statusCode == http.StatusBadRequest: // 400
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, detail)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden: // 401, 403
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, detail)
	case statusCode == http.StatusTooManyRequests: // 429
		return fmt.Errorf("%w: %s", domain.ErrRateLimit, detail)
	default:
		return fmt.Errorf("%w: %s", domain.ErrProviderError, detail)
	}
}

// Compile-time interface check.
var _ domain.SearchProvider = (*GoogleProvider)(nil)
