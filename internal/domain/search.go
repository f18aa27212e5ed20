package domain

import "context"

// SearchResult is a single candidate source returned by the search provider.
// Immutable once created; Link is the uniqueness key.
type SearchResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"display_link"`
}

// ScoredResult is a SearchResult with a semantic-relevance verdict attached.
type ScoredResult struct {
	SearchResult
	// Confidence estimates the semantic match between the original text and
	// this candidate, 0 to 100.
	Confidence  int    `json:"confidence"`
	Explanation string `json:"explanation,omitempty"`
}

// SearchProvider is the outbound port to a remote web-search capability.
// A single call returns at most one page (provider-dependent, up to 10 items);
// start is the 1-based offset of the first result requested.
type SearchProvider interface {
	Search(ctx context.Context, query string, num, start int) ([]SearchResult, error)
	Name() string
}

// PostFetcher retrieves the content of a linked chat post, when the transport
// supports it. Implementations that cannot read arbitrary posts return
// ErrUnsupported.
type PostFetcher interface {
	FetchPost(ctx context.Context, channel, postID string) (string, error)
}
