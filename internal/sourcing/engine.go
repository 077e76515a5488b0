package sourcing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/harvest"
	"FeedstockSourcing/internal/metrics"
	"FeedstockSourcing/internal/ports"
)

var validate = validator.New()

// Settings are the engine constants loaded from config.
type Settings struct {
	Search                      SearchSettings
	Transport                   TransportModel
	ChunkLimit                  int
	TonneToTon                  float64
	UnloadingCostPerTruckload   float64
	UnloadingDieselPerTruckload float64
}

// DefaultSettings returns production defaults.
func DefaultSettings() Settings {
	return Settings{
		Search:                      DefaultSearchSettings(),
		Transport:                   DefaultTransportModel(),
		ChunkLimit:                  DefaultChunkLimit,
		TonneToTon:                  DefaultTonneToTon,
		UnloadingCostPerTruckload:   15,
		UnloadingDieselPerTruckload: 1.5,
	}
}

// Deps wires all driven adapters into the engine.
type Deps struct {
	Repository ports.ClusterRepository
	Harvest    ports.HarvestCostEvaluator
	Routing    ports.RoutingService
	MoveIn     ports.MoveInCostModel
	FuelPrices ports.FuelPriceSource
	Systems    *harvest.Registry
	Metrics    metrics.Recorder
	Logger     *slog.Logger
}

// Engine sources feedstock for one facility and one period per Run.
type Engine struct {
	settings  Settings
	systems   *harvest.Registry
	search    *Search
	moveIn    *MoveInAggregator
	moveInFn  ports.MoveInCostModel
	fuel      ports.FuelPriceSource
	assembler Assembler
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewEngine constructs the sourcing engine.
func NewEngine(deps Deps, settings Settings) *Engine {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop()
	}
	if deps.Systems == nil {
		deps.Systems = harvest.DefaultRegistry()
	}
	if settings.TonneToTon <= 0 {
		settings.TonneToTon = DefaultTonneToTon
	}

	evaluator := NewEvaluator(deps.Harvest, deps.Routing, settings.Transport, settings.UnloadingDieselPerTruckload)
	return &Engine{
		settings:  settings,
		systems:   deps.Systems,
		search:    NewSearch(deps.Repository, evaluator, settings.Search, deps.Metrics, deps.Logger),
		moveIn:    NewMoveInAggregator(deps.Routing, settings.ChunkLimit),
		moveInFn:  deps.MoveIn,
		fuel:      deps.FuelPrices,
		assembler: Assembler{TonneToTon: settings.TonneToTon, UnloadingCostPerTruckload: settings.UnloadingCostPerTruckload},
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Run executes search, selection, move-in and assembly for one period. Cluster-level
// failures are reported in the result; repository, routing batch and move-in failures
// fail the run.
func (e *Engine) Run(ctx context.Context, req domain.SourcingRequest) (domain.SelectionResult, error) {
	if err := validate.Struct(req); err != nil {
		return domain.SelectionResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	system, err := e.systems.Resolve(req.HarvestSystem)
	if err != nil {
		return domain.SelectionResult{}, err
	}

	params, err := e.params(ctx, req, system)
	if err != nil {
		return domain.SelectionResult{}, err
	}

	runID := uuid.NewString()
	facility := req.Facility()
	target := GreenTons(req.AnnualDemand, req.MoistureFraction(), e.settings.TonneToTon)
	e.info("sourcing run started", "run", runID, "year", req.Year, "target_green_tons", target, "system", system.Name)

	state, err := e.search.Run(ctx, SearchInput{
		Facility:    facility,
		TreatmentID: req.TreatmentID,
		Year:        req.Year,
		Target:      target,
		Expansion:   req.Expansion(),
		Params:      params,
		UsedIDs:     req.UsedIDs,
		ExcludedIDs: req.ExcludedIDs,
	})
	if err != nil {
		return domain.SelectionResult{}, fmt.Errorf("search: %w", err)
	}

	selected, remaining, shortfall := Select(state.Pool, target)

	distance, chunks, err := e.moveIn.MoveInDistance(ctx, facility, selected)
	if err != nil {
		return domain.SelectionResult{}, fmt.Errorf("move-in distance: %w", err)
	}
	e.metrics.MoveInChunks(chunks)

	moveIn, err := e.moveInCost(ctx, params, distance)
	if err != nil {
		return domain.SelectionResult{}, fmt.Errorf("move-in cost: %w", err)
	}

	result := e.assembler.Assemble(AssemblyInput{
		RunID:            runID,
		Year:             req.Year,
		Target:           target,
		MoistureFraction: req.MoistureFraction(),
		State:            state,
		Selected:         selected,
		Remaining:        remaining,
		Shortfall:        shortfall,
		MoveInDistance:   distance,
		MoveInChunks:     chunks,
		MoveIn:           moveIn,
	})

	e.metrics.RunFinished(string(result.Outcome), result.Shortfall)
	e.info("sourcing run finished",
		"run", runID,
		"outcome", result.Outcome,
		"reason", state.StopReason,
		"radius", state.Radius,
		"selected", len(selected),
		"failed", len(state.Failures),
		"feedstock", result.Totals.Feedstock,
		"shortfall", result.Shortfall)

	return result, nil
}

func (e *Engine) params(ctx context.Context, req domain.SourcingRequest, system harvest.System) (domain.EvaluationParams, error) {
	diesel := req.DieselPrice
	if diesel == 0 && e.fuel != nil {
		price, err := e.fuel.DieselPrice(ctx)
		if err != nil {
			return domain.EvaluationParams{}, fmt.Errorf("diesel price: %w", err)
		}
		diesel = price
	}

	return domain.EvaluationParams{
		HarvestSystem:    system.Name,
		RecoveryFraction: system.RecoveryFraction(req.Recovery),
		Recovery:         req.Recovery,
		DieselPrice:      diesel,
		MoistureContent:  req.MoistureContent,
		WageFaller:       req.WageFaller,
		WageOther:        req.WageOther,
		WageTruckDriver:  req.WageTruckDriver,
		LaborBenefits:    req.LaborBenefits,
		DriverBenefits:   req.DriverBenefits,
		OilCost:          req.OilCost,
		PPICurrent:       req.PPICurrent,
	}, nil
}

func (e *Engine) moveInCost(ctx context.Context, params domain.EvaluationParams, distance float64) (ports.MoveInCost, error) {
	if distance == 0 || e.moveInFn == nil {
		return ports.MoveInCost{}, nil
	}

	return e.moveInFn.MoveIn(ctx, ports.MoveInRequest{
		HarvestSystem: params.HarvestSystem,
		Distance:      distance / 1000 * e.settings.Transport.KmToMiles,
		DieselPrice:   params.DieselPrice,
		WageFaller:    params.WageFaller,
		WageOther:     params.WageOther,
		LaborBenefits: params.LaborBenefits,
		PPICurrent:    params.PPICurrent,
	})
}

func (e *Engine) info(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}
