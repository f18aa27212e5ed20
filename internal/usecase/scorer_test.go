package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcehound/internal/domain"
)

// fakeLLM returns a canned chat response or error.
type fakeLLM struct {
	content string
	err     error
	calls   int
	lastReq domain.ChatRequest
}

func (f *fakeLLM) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatResponse{Content: f.content}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

func TestScoreParsesProviderResponse(t *testing.T) {
	llm := &fakeLLM{content: `{"scores":[
		{"index":1,"confidence":90,"explanation":"same story"},
		{"index":2,"confidence":40,"explanation":"related"}
	]}`}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 2))
	require.Len(t, got, 2)
	assert.Equal(t, 90, got[0].Confidence)
	assert.Equal(t, "same story", got[0].Explanation)
	assert.Equal(t, 40, got[1].Confidence)
}

func TestScoreSortsDescending(t *testing.T) {
	llm := &fakeLLM{content: `{"scores":[
		{"index":1,"confidence":10},
		{"index":2,"confidence":95},
		{"index":3,"confidence":50}
	]}`}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 3))
	require.Len(t, got, 3)
	assert.Equal(t, []int{95, 50, 10}, []int{got[0].Confidence, got[1].Confidence, got[2].Confidence})
}

func TestScoreStableSortPreservesProviderOrderOnTies(t *testing.T) {
	llm := &fakeLLM{content: `{"scores":[
		{"index":1,"confidence":50},
		{"index":2,"confidence":50},
		{"index":3,"confidence":50}
	]}`}
	s := NewRelevanceScorer(llm, testLogger())

	candidates := makeResults("c", 3)
	got := s.Score(context.Background(), "original", candidates)
	require.Len(t, got, 3)
	for i := range got {
		assert.Equal(t, candidates[i].Link, got[i].Link)
	}
}

func TestScoreToleratesCodeFence(t *testing.T) {
	llm := &fakeLLM{content: "```json\n{\"scores\":[{\"index\":1,\"confidence\":80,\"explanation\":\"ok\"}]}\n```"}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 1))
	require.Len(t, got, 1)
	assert.Equal(t, 80, got[0].Confidence)
}

func TestScoreMissingIndexScoresZero(t *testing.T) {
	llm := &fakeLLM{content: `{"scores":[{"index":1,"confidence":70,"explanation":"ok"}]}`}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 3))
	require.Len(t, got, 3)

	// Sorted descending: the scored candidate first, then the two zeros.
	assert.Equal(t, 70, got[0].Confidence)
	for _, r := range got[1:] {
		assert.Zero(t, r.Confidence)
		assert.Equal(t, "no explanation provided", r.Explanation)
	}
}

func TestScoreClampsConfidence(t *testing.T) {
	llm := &fakeLLM{content: `{"scores":[
		{"index":1,"confidence":150},
		{"index":2,"confidence":-20}
	]}`}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 2))
	require.Len(t, got, 2)
	assert.Equal(t, 100, got[0].Confidence)
	assert.Equal(t, 0, got[1].Confidence)
}

func TestScoreFallbackOnProviderError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 4))
	require.Len(t, got, 4)
	for _, r := range got {
		assert.Equal(t, fallbackConfidence, r.Confidence)
		assert.NotEmpty(t, r.Explanation)
	}
}

func TestScoreFallbackOnMalformedResponse(t *testing.T) {
	llm := &fakeLLM{content: "I think result 1 is best!"}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 2))
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, fallbackConfidence, r.Confidence)
	}
}

func TestScoreFallbackCount(t *testing.T) {
	// min(10, len(candidates)) entries even when the provider fails.
	llm := &fakeLLM{err: errors.New("boom")}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 15))
	assert.Len(t, got, 10)
}

func TestScoreCapsCandidatesAtTen(t *testing.T) {
	llm := &fakeLLM{content: `{"scores":[{"index":1,"confidence":60}]}`}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", makeResults("c", 25))
	assert.Len(t, got, 10)
	assert.Equal(t, 1, llm.calls)
}

func TestScoreEmptyCandidates(t *testing.T) {
	llm := &fakeLLM{}
	s := NewRelevanceScorer(llm, testLogger())

	got := s.Score(context.Background(), "original", nil)
	assert.Empty(t, got)
	assert.Zero(t, llm.calls)
}

func TestScorePromptContainsCandidates(t *testing.T) {
	llm := &fakeLLM{content: `{"scores":[{"index":1,"confidence":60}]}`}
	s := NewRelevanceScorer(llm, testLogger())

	candidates := []domain.SearchResult{{
		Title:   "An article",
		Link:    "https://example.com/article",
		Snippet: "snippet text",
	}}
	s.Score(context.Background(), "the original claim", candidates)

	require.Len(t, llm.lastReq.Messages, 2)
	user := llm.lastReq.Messages[1].Content
	assert.Contains(t, user, "the original claim")
	assert.Contains(t, user, "1. An article")
	assert.Contains(t, user, "https://example.com/article")
	assert.Contains(t, user, "snippet text")
}
