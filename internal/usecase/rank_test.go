package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sourcehound/internal/domain"
)

func scoredWith(confidences ...int) []domain.ScoredResult {
	out := make([]domain.ScoredResult, len(confidences))
	for i, c := range confidences {
		out[i] = domain.ScoredResult{
			SearchResult: domain.SearchResult{Link: "https://example.com/" + string(rune('a'+i))},
			Confidence:   c,
		}
	}
	return out
}

func TestSelectTopTakesFirstN(t *testing.T) {
	got := SelectTop(scoredWith(90, 70, 40, 10, 5), 3)
	assert.Len(t, got, 3)
	assert.Equal(t, 90, got[0].Confidence)
	assert.Equal(t, 70, got[1].Confidence)
	assert.Equal(t, 40, got[2].Confidence)
}

func TestSelectTopDropsZeroConfidence(t *testing.T) {
	got := SelectTop(scoredWith(80, 0, 0), 3)
	assert.Len(t, got, 1)
	assert.Equal(t, 80, got[0].Confidence)
}

func TestSelectTopAllZeroYieldsEmpty(t *testing.T) {
	got := SelectTop(scoredWith(0, 0, 0, 0), 3)
	assert.Empty(t, got)
}

func TestSelectTopShortInput(t *testing.T) {
	got := SelectTop(scoredWith(60), 3)
	assert.Len(t, got, 1)
}

func TestSelectTopEmptyInput(t *testing.T) {
	assert.Empty(t, SelectTop(nil, 3))
}

func TestSelectTopOutputSortedDescending(t *testing.T) {
	got := SelectTop(scoredWith(100, 90, 80, 70), 4)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Confidence, got[i].Confidence)
	}
}
