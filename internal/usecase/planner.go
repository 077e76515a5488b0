package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/ports"
)

// Sourcer runs one sourcing period.
type Sourcer interface {
	Run(ctx context.Context, req domain.SourcingRequest) (domain.SelectionResult, error)
}

// PlannerDeps wires the engine and optional persistence into the planner.
type PlannerDeps struct {
	Engine Sourcer
	Store  ports.SelectionStore
	Logger *slog.Logger
}

// Planner runs consecutive periods for one facility so no cluster is harvested twice.
type Planner struct {
	engine Sourcer
	store  ports.SelectionStore
	logger *slog.Logger
}

// Plan is the outcome of a multi-period run.
type Plan struct {
	ID      string                   `yaml:"id"`
	Periods []domain.SelectionResult `yaml:"periods"`
	Summary PlanSummary              `yaml:"summary"`
}

// PlanSummary aggregates the completed periods.
type PlanSummary struct {
	Periods         int     `yaml:"periods"`
	ShortPeriods    int     `yaml:"shortPeriods"`
	Clusters        int     `yaml:"clusters"`
	DryFeedstock    float64 `yaml:"dryFeedstock"`
	HarvestCost     float64 `yaml:"harvestCost"`
	TransportCost   float64 `yaml:"transportCost"`
	MoveInCost      float64 `yaml:"moveInCost"`
	TotalDieselUsed float64 `yaml:"totalDiesel"`
}

// NewPlanner constructs the multi-period use case.
func NewPlanner(deps PlannerDeps) *Planner {
	return &Planner{
		engine: deps.Engine,
		store:  deps.Store,
		logger: deps.Logger,
	}
}

// PlanPeriods starts a new plan and sources each year in order.
func (p *Planner) PlanPeriods(ctx context.Context, req domain.SourcingRequest, years []int) (Plan, error) {
	return p.run(ctx, uuid.NewString(), req, years)
}

// ResumePlan continues an existing plan, excluding every cluster its stored periods used or rejected.
func (p *Planner) ResumePlan(ctx context.Context, planID string, req domain.SourcingRequest, years []int) (Plan, error) {
	if p.store == nil {
		return Plan{}, errors.New("resume plan: no selection store configured")
	}

	used, excluded, err := p.store.LoadUsed(ctx, planID)
	if err != nil {
		return Plan{}, fmt.Errorf("load plan %s: %w", planID, err)
	}
	req.UsedIDs = append(append([]string(nil), req.UsedIDs...), used...)
	req.ExcludedIDs = append(append([]string(nil), req.ExcludedIDs...), excluded...)

	return p.run(ctx, planID, req, years)
}

func (p *Planner) run(ctx context.Context, planID string, req domain.SourcingRequest, years []int) (Plan, error) {
	plan := Plan{ID: planID}
	if p.engine == nil {
		return plan, errors.New("plan periods: no engine configured")
	}
	if len(years) == 0 {
		years = []int{req.Year}
	}

	used := newIDSet(req.UsedIDs)
	excluded := newIDSet(req.ExcludedIDs)

	for _, year := range years {
		period := req
		period.Year = year
		period.UsedIDs = used.sorted()
		period.ExcludedIDs = excluded.sorted()

		result, err := p.engine.Run(ctx, period)
		if err != nil {
			plan.Summary = summarize(plan.Periods)
			return plan, fmt.Errorf("period %d: %w", year, err)
		}

		for _, id := range result.SelectedIDs {
			used.add(id)
		}
		for _, f := range result.Failures {
			excluded.add(f.ClusterID)
		}

		if p.store != nil {
			if err := p.store.SavePeriod(ctx, planID, result); err != nil {
				plan.Summary = summarize(plan.Periods)
				return plan, fmt.Errorf("persist period %d: %w", year, err)
			}
		}

		plan.Periods = append(plan.Periods, result)
		p.info("period sourced",
			"plan", planID,
			"year", year,
			"selected", len(result.SelectedIDs),
			"shortfall", result.Shortfall,
			"used_total", len(used))
	}

	plan.Summary = summarize(plan.Periods)
	return plan, nil
}

func summarize(periods []domain.SelectionResult) PlanSummary {
	var s PlanSummary
	for _, r := range periods {
		s.Periods++
		if r.Shortfall {
			s.ShortPeriods++
		}
		s.Clusters += len(r.SelectedIDs)
		s.DryFeedstock += r.Totals.DryFeedstock
		s.HarvestCost += r.Totals.HarvestCost
		s.TransportCost += r.Totals.TransportCost + r.Totals.UnloadingCost
		s.MoveInCost += r.Totals.MoveInCost
		s.TotalDieselUsed += r.Fuel.TotalDiesel()
	}
	return s
}

func (p *Planner) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s idSet) add(id string) {
	s[id] = struct{}{}
}

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
