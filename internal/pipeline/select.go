package pipeline

import (
	"sort"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// selectTop filtra las candidatas por score mínimo, las ordena de mejor a
// peor y se queda con las k primeras. El orden relativo de empates se
// conserva.
func selectTop(batch []domain.Strategy, threshold float64, k int) []domain.Strategy {
	var picked []domain.Strategy
	for _, s := range batch {
		if s.Score >= threshold {
			picked = append(picked, s.Clone())
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Score > picked[j].Score
	})

	if len(picked) > k {
		picked = picked[:k]
	}
	return picked
}
