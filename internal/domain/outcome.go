package domain

// OutcomeKind identifies the terminal state a pipeline run reached.
// Exactly one kind per request.
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeEmptyInput        OutcomeKind = "empty_input"
	OutcomeNoSources         OutcomeKind = "no_sources_found"
	OutcomeNoRelevantSources OutcomeKind = "no_relevant_sources_found"
	OutcomeSearchError       OutcomeKind = "search_provider_error"
	OutcomeUnexpected        OutcomeKind = "unexpected_error"
)

// Outcome is the result of one pipeline run. Results is populated only for
// OutcomeSuccess; Detail carries internal error context for the two error
// kinds and must never be shown verbatim to end users.
type Outcome struct {
	Kind    OutcomeKind
	Results []ScoredResult
	Detail  string
}

// IsError reports whether the outcome is a provider or internal failure, as
// opposed to a valid empty/no-result terminal state.
func (o Outcome) IsError() bool {
	return o.Kind == OutcomeSearchError || o.Kind == OutcomeUnexpected
}

func Success(results []ScoredResult) Outcome {
	return Outcome{Kind: OutcomeSuccess, Results: results}
}

func EmptyInput() Outcome { return Outcome{Kind: OutcomeEmptyInput} }

func NoSources() Outcome { return Outcome{Kind: OutcomeNoSources} }

func NoRelevantSources() Outcome { return Outcome{Kind: OutcomeNoRelevantSources} }

func SearchError(detail string) Outcome {
	return Outcome{Kind: OutcomeSearchError, Detail: detail}
}

func Unexpected(detail string) Outcome {
	return Outcome{Kind: OutcomeUnexpected, Detail: detail}
}
