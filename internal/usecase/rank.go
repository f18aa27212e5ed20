package usecase

import "sourcehound/internal/domain"

// SelectTop takes the first n entries of an already-sorted scored list and
// drops anything with confidence zero or below. An empty result is valid and
// means "nothing relevant".
func SelectTop(scored []domain.ScoredResult, n int) []domain.ScoredResult {
	if n > len(scored) {
		n = len(scored)
	}

	top := make([]domain.ScoredResult, 0, n)
	for _, r := range scored[:n] {
		if r.Confidence <= 0 {
			continue
		}
		top = append(top, r)
	}
	return top
}
