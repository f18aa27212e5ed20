package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"sourcehound/internal/domain"
)

const (
	// maxCandidates bounds how many results go into a single scoring request.
	maxCandidates = 10

	// fallbackConfidence is assigned uniformly when the scoring provider
	// fails entirely. The results are still usable, just unranked.
	fallbackConfidence = 50

	fallbackExplanation = "automatic relevance scoring was unavailable"
	missingExplanation  = "no explanation provided"
)

const scoringSystemPrompt = `You are a relevance scoring assistant. Given an original text and a numbered list of web search results, estimate how well each result covers the same story or claim as the original text.

Respond with JSON only, no prose, in this exact shape:
{"scores":[{"index":1,"confidence":90,"explanation":"short reason"}]}

Rules:
- index refers to the numbered candidate (1-based).
- confidence is an integer 0-100.
- Include every candidate exactly once.
- Keep each explanation under 25 words.`

// RelevanceScorer asks an LLM to score candidates against the original text.
// Score never fails outward: provider failures degrade to a uniform default.
type RelevanceScorer struct {
	llm    domain.LLMProvider
	logger *slog.Logger
}

// NewRelevanceScorer creates a scorer over the given LLM provider.
func NewRelevanceScorer(llm domain.LLMProvider, logger *slog.Logger) *RelevanceScorer {
	return &RelevanceScorer{llm: llm, logger: logger}
}

// scoreEntry is one element of the provider's structured response.
type scoreEntry struct {
	Index       int    `json:"index"`
	Confidence  int    `json:"confidence"`
	Explanation string `json:"explanation"`
}

type scoreResponse struct {
	Scores []scoreEntry `json:"scores"`
}

// Score attaches a confidence verdict to each of the first 10 candidates and
// returns them stable-sorted by confidence descending. On any provider
// failure the fallback policy applies: every candidate comes back with
// confidence 50 and a generic explanation.
func (s *RelevanceScorer) Score(ctx context.Context, originalText string, candidates []domain.SearchResult) []domain.ScoredResult {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	scored, err := s.scoreOnce(ctx, originalText, candidates)
	if err != nil {
		s.logger.Warn("scoring provider failed, applying fallback confidence", "error", err)
		scored = fallbackScores(candidates)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})
	return scored
}

func (s *RelevanceScorer) scoreOnce(ctx context.Context, originalText string, candidates []domain.SearchResult) ([]domain.ScoredResult, error) {
	resp, err := s.llm.Chat(ctx, domain.ChatRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: scoringSystemPrompt},
			{Role: domain.RoleUser, Content: buildScoringPrompt(originalText, candidates)},
		},
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseScoreResponse(resp.Content)
	if err != nil {
		return nil, err
	}

	// Index the provider's verdicts; anything it skipped scores zero.
	byIndex := make(map[int]scoreEntry, len(parsed.Scores))
	for _, e := range parsed.Scores {
		byIndex[e.Index] = e
	}

	scored := make([]domain.ScoredResult, 0, len(candidates))
	for i, c := range candidates {
		entry, ok := byIndex[i+1]
		if !ok {
			scored = append(scored, domain.ScoredResult{
				SearchResult: c,
				Confidence:   0,
				Explanation:  missingExplanation,
			})
			continue
		}
		scored = append(scored, domain.ScoredResult{
			SearchResult: c,
			Confidence:   clampConfidence(entry.Confidence),
			Explanation:  entry.Explanation,
		})
	}
	return scored, nil
}

// buildScoringPrompt renders the original text plus a 1-indexed candidate
// list into a single user message.
func buildScoringPrompt(originalText string, candidates []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString("Original text:\n")
	b.WriteString(originalText)
	b.WriteString("\n\nCandidates:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, c.Title, c.Link)
		if c.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", c.Snippet)
		}
	}
	return b.String()
}

// parseScoreResponse unmarshals the provider's JSON, tolerating a markdown
// code fence around it.
func parseScoreResponse(content string) (*scoreResponse, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parse score response: %w", err)
	}
	if len(parsed.Scores) == 0 {
		return nil, fmt.Errorf("score response contains no scores")
	}
	return &parsed, nil
}

func fallbackScores(candidates []domain.SearchResult) []domain.ScoredResult {
	scored := make([]domain.ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, domain.ScoredResult{
			SearchResult: c,
			Confidence:   fallbackConfidence,
			Explanation:  fallbackExplanation,
		})
	}
	return scored
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
