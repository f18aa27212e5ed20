package usecase

import (
	"fmt"
	"strings"

	"sourcehound/internal/domain"
)

// snippetLimit is the maximum snippet length in the rendered result list.
const snippetLimit = 150

// Confidence tiers for the user-facing indicator.
const (
	tierHigh   = 80
	tierMedium = 60
)

// FormatOutcome renders a pipeline outcome as a plain-text chat reply.
func FormatOutcome(o domain.Outcome) string {
	switch o.Kind {
	case domain.OutcomeSuccess:
		return FormatResults(o.Results)
	case domain.OutcomeEmptyInput:
		return "Please send some text to check. Forwarded posts work too, as long as they contain text or a caption."
	case domain.OutcomeNoSources:
		return "I couldn't find any sources for that text. Try rephrasing it or adding more detail."
	case domain.OutcomeNoRelevantSources:
		return "I found some pages, but none of them looked relevant. Try rephrasing the text or adding more detail."
	case domain.OutcomeSearchError:
		return "Sorry, the search service is having trouble right now. Please try again in a few minutes."
	default:
		return "Sorry, something went wrong on my side. Please try again later."
	}
}

// FormatResults renders ranked results as a numbered plain-text list:
// rank, title, link, confidence tier, explanation and a truncated snippet.
func FormatResults(results []domain.ScoredResult) string {
	var b strings.Builder
	b.WriteString("Here are the most relevant sources I found:\n")

	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n%s\n", i+1, r.Title, r.Link)
		fmt.Fprintf(&b, "Confidence: %s (%d/100)\n", confidenceTier(r.Confidence), r.Confidence)
		if r.Explanation != "" {
			fmt.Fprintf(&b, "%s\n", r.Explanation)
		}
		if snippet := truncateSnippet(r.Snippet); snippet != "" {
			fmt.Fprintf(&b, "%s\n", snippet)
		}
	}
	return b.String()
}

// confidenceTier maps a 0-100 confidence to the three-tier indicator.
func confidenceTier(confidence int) string {
	switch {
	case confidence >= tierHigh:
		return "high"
	case confidence >= tierMedium:
		return "medium"
	default:
		return "low"
	}
}

// truncateSnippet shortens a snippet to snippetLimit runes, appending an
// ellipsis when anything was cut.
func truncateSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= snippetLimit {
		return s
	}
	return string(runes[:snippetLimit]) + "…"
}
