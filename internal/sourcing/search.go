package sourcing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"golang.org/x/sync/errgroup"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/metrics"
	"FeedstockSourcing/internal/ports"
)

// SearchInput scopes one radius expansion search.
type SearchInput struct {
	Facility    orb.Point
	TreatmentID int
	Year        int
	Target      float64 // green tons
	Expansion   float64
	Params      domain.EvaluationParams
	UsedIDs     []string
	ExcludedIDs []string
}

// Search grows a radius around the facility until enough candidate feedstock has been evaluated.
type Search struct {
	repo      ports.ClusterRepository
	evaluator ClusterEvaluator
	settings  SearchSettings
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewSearch wires the repository and evaluator used by the search loop.
func NewSearch(repo ports.ClusterRepository, evaluator ClusterEvaluator, settings SearchSettings, rec metrics.Recorder, log *slog.Logger) *Search {
	if rec == nil {
		rec = metrics.Nop()
	}
	if settings.RadiusStep <= 0 {
		settings.RadiusStep = DefaultSearchSettings().RadiusStep
	}
	return &Search{
		repo:      repo,
		evaluator: evaluator,
		settings:  settings,
		metrics:   rec,
		logger:    log,
	}
}

// Run expands the search band by band. Each band's batch is fully settled before the
// radius grows again. A repository failure aborts the run with *domain.RepositoryError.
func (s *Search) Run(ctx context.Context, in SearchInput) (*SearchState, error) {
	state := newSearchState(in.UsedIDs, in.ExcludedIDs)

	for state.Outcome == domain.OutcomeSearching {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		state.Radius += s.settings.RadiusStep
		clusters, err := s.repo.Query(ctx, ports.ClusterQuery{
			TreatmentID: in.TreatmentID,
			Year:        in.Year,
			Bound:       geo.NewBoundAroundPoint(in.Facility, state.Radius),
			ExcludedIDs: state.exclusions(),
		})
		if err != nil {
			return state, &domain.RepositoryError{Radius: state.Radius, Err: err}
		}

		fresh := s.withinRadius(state, in.Facility, clusters)
		batch, err := s.evaluateBatch(ctx, in.Facility, fresh, in.Params)
		if errors.Is(err, domain.ErrServiceUnavailable) {
			return state, &domain.UnavailableError{Radius: state.Radius, Err: err}
		}
		if err != nil {
			return state, err
		}
		succeeded, failed := state.reduce(batch)
		state.advance(in.Target, in.Expansion, s.settings, len(fresh))

		s.metrics.BandSearched(state.Radius, len(fresh))
		s.debug("band searched",
			"radius", state.Radius,
			"found", len(fresh),
			"evaluated", succeeded,
			"failed", failed,
			"candidate_total", state.CandidateTotal,
			"outcome", state.Outcome)
	}

	return state, nil
}

// withinRadius drops corner over-fetch of the bounding region and anything already seen.
func (s *Search) withinRadius(state *SearchState, facility orb.Point, clusters []domain.Cluster) []domain.Cluster {
	fresh := make([]domain.Cluster, 0, len(clusters))
	batch := make(map[string]struct{}, len(clusters))
	for _, c := range clusters {
		if state.seen(c.ID) {
			continue
		}
		if _, dup := batch[c.ID]; dup {
			continue
		}
		if geo.DistanceHaversine(facility, c.Center()) > state.Radius {
			continue
		}
		batch[c.ID] = struct{}{}
		fresh = append(fresh, c)
	}
	return fresh
}

// evaluateBatch evaluates every cluster concurrently. Tasks never touch shared state:
// each writes its own slot and the caller reduces the settled slice. A breaker refusal
// is not a property of the cluster, so it cancels the batch and is returned instead.
func (s *Search) evaluateBatch(ctx context.Context, facility orb.Point, clusters []domain.Cluster, params domain.EvaluationParams) ([]evaluation, error) {
	results := make([]evaluation, len(clusters))

	g, gctx := errgroup.WithContext(ctx)
	if s.settings.Concurrency > 0 {
		g.SetLimit(s.settings.Concurrency)
	}
	for i, c := range clusters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			res, err := s.evaluator.Evaluate(gctx, facility, c, params)
			if errors.Is(err, domain.ErrServiceUnavailable) {
				return err
			}
			results[i] = evaluation{id: c.ID, result: res, err: err}
			if err != nil {
				s.debug("cluster excluded", "cluster", c.ID, "error", err)
			}
			s.metrics.ClusterEvaluated(err == nil && res.Feedstock > 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *Search) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
