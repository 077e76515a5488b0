package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedstockSourcing/internal/domain"
)

type fakeEngine struct {
	reqs    []domain.SourcingRequest
	results map[int]domain.SelectionResult
	failAt  int
}

func (f *fakeEngine) Run(_ context.Context, req domain.SourcingRequest) (domain.SelectionResult, error) {
	f.reqs = append(f.reqs, req)
	if req.Year == f.failAt {
		return domain.SelectionResult{}, errors.New("routing service unavailable")
	}
	res := f.results[req.Year]
	res.Year = req.Year
	return res, nil
}

type fakeStore struct {
	mu       sync.Mutex
	saved    map[string][]domain.SelectionResult
	used     []string
	excluded []string
	err      error
}

func (s *fakeStore) SavePeriod(_ context.Context, planID string, result domain.SelectionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = map[string][]domain.SelectionResult{}
	}
	s.saved[planID] = append(s.saved[planID], result)
	return nil
}

func (s *fakeStore) LoadUsed(_ context.Context, _ string) ([]string, []string, error) {
	return s.used, s.excluded, nil
}

func periodResults() map[int]domain.SelectionResult {
	return map[int]domain.SelectionResult{
		2025: {
			SelectedIDs: []string{"b", "a"},
			Failures:    []domain.ClusterFailure{{ClusterID: "x", Reason: "no route"}},
			Totals:      domain.Totals{DryFeedstock: 100, HarvestCost: 1000, TransportCost: 400, UnloadingCost: 50, MoveInCost: 80},
			Fuel:        domain.FuelUse{HarvestDiesel: 10, MoveInDiesel: 2},
		},
		2026: {
			SelectedIDs: []string{"c"},
			Shortfall:   true,
			Totals:      domain.Totals{DryFeedstock: 40, HarvestCost: 500, TransportCost: 100},
		},
		2027: {SelectedIDs: []string{"d"}},
	}
}

func TestPlanPeriodsFoldsUsedAndExcludedIDs(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{results: periodResults()}
	store := &fakeStore{}
	planner := NewPlanner(PlannerDeps{Engine: engine, Store: store})

	req := domain.SourcingRequest{Year: 2000, UsedIDs: []string{"z"}}
	plan, err := planner.PlanPeriods(context.Background(), req, []int{2025, 2026, 2027})
	require.NoError(t, err)

	require.Len(t, engine.reqs, 3)
	assert.Equal(t, 2025, engine.reqs[0].Year)
	assert.Equal(t, []string{"z"}, engine.reqs[0].UsedIDs)
	assert.Empty(t, engine.reqs[0].ExcludedIDs)

	assert.Equal(t, 2026, engine.reqs[1].Year)
	assert.Equal(t, []string{"a", "b", "z"}, engine.reqs[1].UsedIDs)
	assert.Equal(t, []string{"x"}, engine.reqs[1].ExcludedIDs)

	assert.Equal(t, []string{"a", "b", "c", "z"}, engine.reqs[2].UsedIDs)

	assert.NotEmpty(t, plan.ID)
	assert.Len(t, plan.Periods, 3)
	assert.Len(t, store.saved[plan.ID], 3)

	assert.Equal(t, 3, plan.Summary.Periods)
	assert.Equal(t, 1, plan.Summary.ShortPeriods)
	assert.Equal(t, 4, plan.Summary.Clusters)
	assert.Equal(t, 140.0, plan.Summary.DryFeedstock)
	assert.Equal(t, 550.0, plan.Summary.TransportCost)
	assert.Equal(t, 12.0, plan.Summary.TotalDieselUsed)

	// the caller's request is not mutated
	assert.Equal(t, []string{"z"}, req.UsedIDs)
}

func TestPlanPeriodsStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{results: periodResults(), failAt: 2026}
	store := &fakeStore{}
	planner := NewPlanner(PlannerDeps{Engine: engine, Store: store})

	plan, err := planner.PlanPeriods(context.Background(), domain.SourcingRequest{}, []int{2025, 2026, 2027})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "period 2026")

	assert.Len(t, engine.reqs, 2)
	require.Len(t, plan.Periods, 1)
	assert.Equal(t, 2025, plan.Periods[0].Year)
	assert.Equal(t, 1, plan.Summary.Periods)
	assert.Len(t, store.saved[plan.ID], 1)
}

func TestPlanPeriodsFailsWhenPersistenceFails(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{results: periodResults()}
	store := &fakeStore{err: errors.New("disk full")}
	planner := NewPlanner(PlannerDeps{Engine: engine, Store: store})

	plan, err := planner.PlanPeriods(context.Background(), domain.SourcingRequest{}, []int{2025, 2026})
	require.Error(t, err)
	assert.Empty(t, plan.Periods)
	assert.Len(t, engine.reqs, 1)
}

func TestPlanPeriodsDefaultsToRequestYear(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{results: periodResults()}
	planner := NewPlanner(PlannerDeps{Engine: engine})

	plan, err := planner.PlanPeriods(context.Background(), domain.SourcingRequest{Year: 2027}, nil)
	require.NoError(t, err)
	require.Len(t, plan.Periods, 1)
	assert.Equal(t, []string{"d"}, plan.Periods[0].SelectedIDs)
}

func TestResumePlanLoadsStoredIDs(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{results: periodResults()}
	store := &fakeStore{used: []string{"a", "b"}, excluded: []string{"x"}}
	planner := NewPlanner(PlannerDeps{Engine: engine, Store: store})

	plan, err := planner.ResumePlan(context.Background(), "plan-1", domain.SourcingRequest{UsedIDs: []string{"q"}}, []int{2027})
	require.NoError(t, err)

	assert.Equal(t, "plan-1", plan.ID)
	assert.Equal(t, []string{"a", "b", "q"}, engine.reqs[0].UsedIDs)
	assert.Equal(t, []string{"x"}, engine.reqs[0].ExcludedIDs)
	assert.Len(t, store.saved["plan-1"], 1)
}

func TestResumePlanRequiresStore(t *testing.T) {
	t.Parallel()

	planner := NewPlanner(PlannerDeps{Engine: &fakeEngine{}})
	_, err := planner.ResumePlan(context.Background(), "plan-1", domain.SourcingRequest{}, []int{2025})
	require.Error(t, err)
}
