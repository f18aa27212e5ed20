package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"sourcehound/internal/domain"
)

// pageSize is the most the search provider returns in a single call.
const pageSize = 10

// SearchClient collects search results across provider pages.
type SearchClient struct {
	provider domain.SearchProvider
	logger   *slog.Logger
}

// NewSearchClient creates a SearchClient over the given provider.
func NewSearchClient(provider domain.SearchProvider, logger *slog.Logger) *SearchClient {
	return &SearchClient{provider: provider, logger: logger}
}

// Search accumulates up to desired results, paging through the provider.
// A failure on the first page propagates to the caller; a failure or empty
// page later just stops paging and returns what has been collected. The
// result is truncated to exactly desired entries (or fewer if exhausted),
// and the provider is called at most ceil(desired/pageSize) times.
func (c *SearchClient) Search(ctx context.Context, query string, desired int) ([]domain.SearchResult, error) {
	if desired <= 0 {
		desired = pageSize
	}

	var results []domain.SearchResult
	maxPages := (desired + pageSize - 1) / pageSize

	for page := 0; page < maxPages && len(results) < desired; page++ {
		start := 1 + page*pageSize
		num := desired - len(results)
		if num > pageSize {
			num = pageSize
		}

		items, err := c.provider.Search(ctx, query, num, start)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("search %q: %w", query, err)
			}
			c.logger.Warn("search page failed, returning partial results",
				"query", query, "start", start, "collected", len(results), "error", err)
			break
		}
		if len(items) == 0 {
			break
		}
		results = append(results, items...)
	}

	if len(results) > desired {
		results = results[:desired]
	}
	return results, nil
}

// SearchAll runs several queries concurrently, merges their results and
// drops duplicate links (first occurrence wins, in query order). Individual
// query failures are logged and skipped; an error is returned only when
// every query fails.
func (c *SearchClient) SearchAll(ctx context.Context, queries []string, desiredPerQuery int) ([]domain.SearchResult, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	if len(queries) == 1 {
		return c.Search(ctx, queries[0], desiredPerQuery)
	}

	type queryResult struct {
		results []domain.SearchResult
		err     error
	}
	perQuery := make([]queryResult, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			r, err := c.Search(ctx, q, desiredPerQuery)
			perQuery[i] = queryResult{results: r, err: err}
		}(i, q)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var merged []domain.SearchResult
	failures := 0
	var lastErr error

	for i, qr := range perQuery {
		if qr.err != nil {
			failures++
			lastErr = qr.err
			c.logger.Warn("query failed, skipping", "query", queries[i], "error", qr.err)
			continue
		}
		for _, r := range qr.results {
			if _, dup := seen[r.Link]; dup {
				continue
			}
			seen[r.Link] = struct{}{}
			merged = append(merged, r)
		}
	}

	if failures == len(queries) {
		return nil, fmt.Errorf("all %d queries failed: %w", len(queries), lastErr)
	}
	return merged, nil
}
