package sourcing

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/ports"
)

// ClusterEvaluator turns a cluster into its delivered economics.
type ClusterEvaluator interface {
	Evaluate(ctx context.Context, facility orb.Point, cluster domain.Cluster, params domain.EvaluationParams) (domain.EvaluatedCluster, error)
}

// Evaluator combines the harvest-cost model with routed transport costs.
// It holds no per-run state and is safe for concurrent use.
type Evaluator struct {
	harvest         ports.HarvestCostEvaluator
	routing         ports.RoutingService
	transport       TransportModel
	unloadingDiesel float64 // gal per truckload
}

var _ ClusterEvaluator = (*Evaluator)(nil)

// NewEvaluator wires the external models used for a cluster evaluation.
func NewEvaluator(harvest ports.HarvestCostEvaluator, routing ports.RoutingService, transport TransportModel, unloadingDieselPerTruckload float64) *Evaluator {
	return &Evaluator{
		harvest:         harvest,
		routing:         routing,
		transport:       transport,
		unloadingDiesel: unloadingDieselPerTruckload,
	}
}

// Evaluate computes feedstock, costs and fuel use for one cluster. Every failure is
// returned as *domain.EvaluationError.
func (e *Evaluator) Evaluate(ctx context.Context, facility orb.Point, cluster domain.Cluster, params domain.EvaluationParams) (domain.EvaluatedCluster, error) {
	estimate, err := e.harvest.Estimate(ctx, cluster, params)
	if err != nil {
		return domain.EvaluatedCluster{}, &domain.EvaluationError{ClusterID: cluster.ID, Stage: "harvest model", Err: err}
	}

	feedstock := estimate.ResidualYieldPerAcre * cluster.Area
	if feedstock <= 0 {
		return domain.EvaluatedCluster{}, &domain.EvaluationError{
			ClusterID: cluster.ID,
			Stage:     "feedstock",
			Err:       fmt.Errorf("%w: %.3f", domain.ErrNonPositiveFeedstock, feedstock),
		}
	}

	route, err := e.routing.Route(ctx, facility, cluster.Landing())
	if err != nil {
		return domain.EvaluatedCluster{}, &domain.EvaluationError{ClusterID: cluster.ID, Stage: "routing", Err: err}
	}

	distance := route.Distance / 1000
	duration := route.Duration / 3600
	trip := TripInputs{
		Distance:       distance,
		Duration:       duration,
		DieselPrice:    params.DieselPrice,
		Wage:           params.WageTruckDriver,
		DriverBenefits: params.DriverBenefits,
		OilCost:        params.OilCost,
	}
	truckloads := e.transport.Truckloads(feedstock)

	return domain.EvaluatedCluster{
		Cluster:              cluster,
		Feedstock:            feedstock,
		CoProduct:            (estimate.TotalYieldPerAcre - estimate.ResidualYieldPerAcre) * cluster.Area,
		HarvestCost:          estimate.ResidualCostPerAcre * cluster.Area,
		CoProductHarvestCost: (estimate.TotalCostPerAcre - estimate.ResidualCostPerAcre) * cluster.Area,
		TransportDistance:    distance,
		TransportDuration:    duration,
		RoundTripDistance:    distance * 2,
		TransportCost:        e.transport.Cost(feedstock, trip),
		Truckloads:           truckloads,
		TransportDiesel:      e.transport.Diesel(feedstock, distance),
		HarvestDiesel:        estimate.DieselPerAcre * cluster.Area,
		Gasoline:             estimate.GasolinePerAcre * cluster.Area,
		JetFuel:              estimate.JetFuelPerAcre * cluster.Area,
		UnloadingDiesel:      float64(truckloads) * e.unloadingDiesel,
	}, nil
}
