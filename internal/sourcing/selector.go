package sourcing

import (
	"sort"

	"FeedstockSourcing/internal/domain"
)

// Select ranks candidates by delivered unit cost and accepts the cheapest until target
// green tons are covered. The cluster crossing the target is taken whole. When the pool
// cannot cover the target every candidate is selected and shortfall is true.
func Select(pool []domain.EvaluatedCluster, target float64) (selected, remaining []domain.EvaluatedCluster, shortfall bool) {
	ranked := make([]domain.EvaluatedCluster, 0, len(pool))
	for _, c := range pool {
		if c.Feedstock > 0 {
			ranked = append(ranked, c)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := ranked[i].UnitCost(), ranked[j].UnitCost()
		if ci != cj {
			return ci < cj
		}
		return ranked[i].ID < ranked[j].ID
	})

	var total float64
	cut := len(ranked)
	for i, c := range ranked {
		if total >= target {
			cut = i
			break
		}
		total += c.Feedstock
	}

	return ranked[:cut:cut], ranked[cut:], total < target
}
