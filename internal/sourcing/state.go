package sourcing

import (
	"fmt"
	"sort"

	"FeedstockSourcing/internal/domain"
)

// SearchSettings bound the radius expansion loop. Distances are in meters.
type SearchSettings struct {
	RadiusStep        float64 `yaml:"radiusStep" validate:"gt=0"`
	SafetyRadius      float64 `yaml:"safetyRadius" validate:"gte=0"`
	SafetyPoolSize    int     `yaml:"safetyPoolSize" validate:"gte=0"`
	SafetySupplyRatio float64 `yaml:"safetySupplyRatio" validate:"gte=0,lte=1"`
	MaxRadius         float64 `yaml:"maxRadius" validate:"gtfield=RadiusStep"`
	EmptyBandLimit    int     `yaml:"emptyBandLimit" validate:"gt=0"`
	Concurrency       int     `yaml:"concurrency" validate:"gte=0"`
}

// DefaultSearchSettings mirrors the production breaker: 40 km, 3800 candidates, 10% of target.
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		RadiusStep:        1000,
		SafetyRadius:      40000,
		SafetyPoolSize:    3800,
		SafetySupplyRatio: 0.1,
		MaxRadius:         250000,
		EmptyBandLimit:    25,
		Concurrency:       32,
	}
}

// SearchState is owned by a single sourcing run and discarded when it returns.
type SearchState struct {
	Radius         float64
	CandidateTotal float64
	Bands          int
	Outcome        domain.SearchOutcome
	StopReason     string

	Pool     []domain.EvaluatedCluster
	Failures []domain.ClusterFailure

	used       map[string]struct{}
	excluded   map[string]struct{}
	candidates map[string]struct{}
	emptyBands int
}

func newSearchState(used, excluded []string) *SearchState {
	s := &SearchState{
		Outcome:    domain.OutcomeSearching,
		used:       make(map[string]struct{}, len(used)),
		excluded:   make(map[string]struct{}, len(excluded)),
		candidates: map[string]struct{}{},
	}
	for _, id := range used {
		s.used[id] = struct{}{}
	}
	for _, id := range excluded {
		s.excluded[id] = struct{}{}
	}
	return s
}

// seen reports whether id was used, excluded or already evaluated in this run.
func (s *SearchState) seen(id string) bool {
	if _, ok := s.used[id]; ok {
		return true
	}
	if _, ok := s.excluded[id]; ok {
		return true
	}
	_, ok := s.candidates[id]
	return ok
}

// exclusions lists every identifier the repository must not return again.
func (s *SearchState) exclusions() []string {
	ids := make([]string, 0, len(s.used)+len(s.excluded)+len(s.candidates))
	for _, set := range []map[string]struct{}{s.used, s.excluded, s.candidates} {
		for id := range set {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// evaluation is the per-cluster outcome of a batch: either a result or an error.
type evaluation struct {
	id     string
	result domain.EvaluatedCluster
	err    error
}

// reduce folds a settled batch into the state. It runs on the search goroutine only.
func (s *SearchState) reduce(batch []evaluation) (succeeded, failed int) {
	for _, ev := range batch {
		err := ev.err
		if err == nil && ev.result.Feedstock <= 0 {
			err = fmt.Errorf("%w: %.3f", domain.ErrNonPositiveFeedstock, ev.result.Feedstock)
		}
		if err != nil {
			if _, dup := s.excluded[ev.id]; !dup {
				s.excluded[ev.id] = struct{}{}
				s.Failures = append(s.Failures, domain.ClusterFailure{ClusterID: ev.id, Reason: err.Error()})
			}
			failed++
			continue
		}

		s.candidates[ev.id] = struct{}{}
		s.Pool = append(s.Pool, ev.result)
		s.CandidateTotal += ev.result.Feedstock
		succeeded++
	}
	return succeeded, failed
}

// advance applies the transition guards after a band has been reduced.
func (s *SearchState) advance(target, expansion float64, cfg SearchSettings, found int) domain.SearchOutcome {
	s.Bands++
	if found == 0 {
		s.emptyBands++
	} else {
		s.emptyBands = 0
	}

	switch {
	case s.CandidateTotal >= target*expansion:
		s.Outcome = domain.OutcomeSufficient
		s.StopReason = "candidate supply reached"
	case s.Radius > cfg.SafetyRadius && len(s.Pool) > cfg.SafetyPoolSize && s.CandidateTotal/target < cfg.SafetySupplyRatio:
		s.Outcome = domain.OutcomeSafetyStopped
		s.StopReason = "local supply too thin"
	case cfg.MaxRadius > 0 && s.Radius >= cfg.MaxRadius:
		s.Outcome = domain.OutcomeSafetyStopped
		s.StopReason = "maximum radius reached"
	case cfg.EmptyBandLimit > 0 && s.Radius > cfg.SafetyRadius && s.emptyBands >= cfg.EmptyBandLimit:
		s.Outcome = domain.OutcomeSafetyStopped
		s.StopReason = "no new clusters in consecutive bands"
	}
	return s.Outcome
}
