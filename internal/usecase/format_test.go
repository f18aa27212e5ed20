package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sourcehound/internal/domain"
)

func TestFormatResultsNumberedList(t *testing.T) {
	results := []domain.ScoredResult{
		{
			SearchResult: domain.SearchResult{Title: "First", Link: "https://a.example", Snippet: "short snippet"},
			Confidence:   92,
			Explanation:  "same event",
		},
		{
			SearchResult: domain.SearchResult{Title: "Second", Link: "https://b.example"},
			Confidence:   65,
		},
	}

	got := FormatResults(results)
	assert.Contains(t, got, "1. First")
	assert.Contains(t, got, "https://a.example")
	assert.Contains(t, got, "Confidence: high (92/100)")
	assert.Contains(t, got, "same event")
	assert.Contains(t, got, "short snippet")
	assert.Contains(t, got, "2. Second")
	assert.Contains(t, got, "Confidence: medium (65/100)")
}

func TestConfidenceTiers(t *testing.T) {
	cases := []struct {
		confidence int
		want       string
	}{
		{100, "high"},
		{80, "high"},
		{79, "medium"},
		{60, "medium"},
		{59, "low"},
		{1, "low"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, confidenceTier(tc.confidence), "confidence %d", tc.confidence)
	}
}

func TestTruncateSnippet(t *testing.T) {
	short := "fits as is"
	assert.Equal(t, short, truncateSnippet(short))

	long := strings.Repeat("x", 200)
	got := truncateSnippet(long)
	assert.Len(t, []rune(got), snippetLimit+1)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestTruncateSnippetMultibyte(t *testing.T) {
	long := strings.Repeat("ф", 180)
	got := truncateSnippet(long)
	assert.Equal(t, snippetLimit+1, len([]rune(got)))
}

func TestFormatOutcomeMessages(t *testing.T) {
	cases := []struct {
		outcome domain.Outcome
		want    string
	}{
		{domain.EmptyInput(), "send some text"},
		{domain.NoSources(), "couldn't find any sources"},
		{domain.NoRelevantSources(), "none of them looked relevant"},
		{domain.SearchError("internal detail"), "search service"},
		{domain.Unexpected("internal detail"), "something went wrong"},
	}
	for _, tc := range cases {
		got := FormatOutcome(tc.outcome)
		assert.Contains(t, got, tc.want)
		assert.NotContains(t, got, "internal detail", "internal detail must never leak")
	}
}

func TestFormatOutcomeSuccess(t *testing.T) {
	out := domain.Success([]domain.ScoredResult{{
		SearchResult: domain.SearchResult{Title: "T", Link: "https://t.example"},
		Confidence:   88,
	}})
	got := FormatOutcome(out)
	assert.Contains(t, got, "1. T")
}
