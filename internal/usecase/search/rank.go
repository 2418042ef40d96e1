package search

import (
	"fmt"
	"sort"

	"github.com/yellowbooks/bizsearch/internal/domain"
)

// rank scores every candidate against the query vector, orders descending by
// score, and truncates to topN. The sort is stable: ties keep retrieval
// order. Exhaustive O(n*d) scoring is fine at the candidate bound; revisit
// with an index if the corpus grows past low thousands.
func rank(query []float32, candidates []domain.Candidate, topN int) ([]domain.ScoredMatch, error) {
	matches := make([]domain.ScoredMatch, 0, len(candidates))

	for _, c := range candidates {
		score, err := domain.CosineSimilarity(query, c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score business %d: %w", c.ID, err)
		}
		matches = append(matches, domain.ScoredMatch{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Summary:     c.Summary,
			Category:    c.Category,
			District:    c.District,
			Score:       score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}

	return matches, nil
}
