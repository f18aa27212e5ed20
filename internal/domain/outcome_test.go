package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeConstructors(t *testing.T) {
	results := []ScoredResult{{Confidence: 90}}

	assert.Equal(t, Outcome{Kind: OutcomeSuccess, Results: results}, Success(results))
	assert.Equal(t, OutcomeEmptyInput, EmptyInput().Kind)
	assert.Equal(t, OutcomeNoSources, NoSources().Kind)
	assert.Equal(t, OutcomeNoRelevantSources, NoRelevantSources().Kind)

	se := SearchError("quota")
	assert.Equal(t, OutcomeSearchError, se.Kind)
	assert.Equal(t, "quota", se.Detail)

	ue := Unexpected("panic: x")
	assert.Equal(t, OutcomeUnexpected, ue.Kind)
	assert.Equal(t, "panic: x", ue.Detail)
}

func TestOutcomeIsError(t *testing.T) {
	assert.True(t, SearchError("x").IsError())
	assert.True(t, Unexpected("x").IsError())
	assert.False(t, Success(nil).IsError())
	assert.False(t, EmptyInput().IsError())
	assert.False(t, NoSources().IsError())
	assert.False(t, NoRelevantSources().IsError())
}
