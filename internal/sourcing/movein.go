package sourcing

import (
	"context"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/ports"
)

// DefaultChunkLimit is the largest stop count sent in one round-trip request.
const DefaultChunkLimit = 2000

// MoveInAggregator computes how far the harvest equipment travels to visit every
// selected cluster once.
//
// Selections above the chunk limit are split into contiguous chunks ordered by
// straight-line distance from the facility, and each chunk is a separate round trip
// from the facility. The summed distance is an upper bound on the optimal tour.
type MoveInAggregator struct {
	routing    ports.RoutingService
	chunkLimit int
}

// NewMoveInAggregator falls back to DefaultChunkLimit for non-positive limits.
func NewMoveInAggregator(routing ports.RoutingService, chunkLimit int) *MoveInAggregator {
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkLimit
	}
	return &MoveInAggregator{routing: routing, chunkLimit: chunkLimit}
}

// MoveInDistance returns the total distance in meters and the number of round-trip calls made.
func (a *MoveInAggregator) MoveInDistance(ctx context.Context, facility orb.Point, selected []domain.EvaluatedCluster) (float64, int, error) {
	if len(selected) == 0 {
		return 0, 0, nil
	}

	stops := make([]orb.Point, len(selected))
	for i, c := range selected {
		stops[i] = c.Center()
	}

	if len(stops) <= a.chunkLimit {
		distance, err := a.routing.RoundTrip(ctx, facility, stops)
		if err != nil {
			return 0, 1, &domain.RoutingBatchError{Chunk: 0, Stops: len(stops), Err: err}
		}
		return distance, 1, nil
	}

	sort.SliceStable(stops, func(i, j int) bool {
		return geo.DistanceHaversine(facility, stops[i]) < geo.DistanceHaversine(facility, stops[j])
	})

	var (
		total  float64
		chunks int
	)
	for start := 0; start < len(stops); start += a.chunkLimit {
		end := min(start+a.chunkLimit, len(stops))
		chunks++

		distance, err := a.routing.RoundTrip(ctx, facility, stops[start:end])
		if err != nil {
			return 0, chunks, &domain.RoutingBatchError{Chunk: chunks - 1, Stops: end - start, Err: err}
		}
		total += distance
	}

	return total, chunks, nil
}
