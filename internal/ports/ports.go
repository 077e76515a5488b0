package ports

import (
	"context"

	"github.com/paulmach/orb"

	"FeedstockSourcing/internal/domain"
)

// ClusterQuery scopes a bounding-region lookup of candidate clusters.
type ClusterQuery struct {
	TreatmentID int
	Year        int
	Bound       orb.Bound
	ExcludedIDs []string
}

// ClusterRepository returns clusters whose center lies inside a bounding region.
type ClusterRepository interface {
	Query(ctx context.Context, q ClusterQuery) ([]domain.Cluster, error)
}

// HarvestEstimate is the per-acre output of the harvest-cost model.
type HarvestEstimate struct {
	TotalYieldPerAcre    float64 `json:"totalYieldPerAcre"`
	TotalCostPerAcre     float64 `json:"totalCostPerAcre"`
	ResidualYieldPerAcre float64 `json:"residualYieldPerAcre"`
	ResidualCostPerAcre  float64 `json:"residualCostPerAcre"`
	DieselPerAcre        float64 `json:"dieselPerAcre"`
	GasolinePerAcre      float64 `json:"gasolinePerAcre"`
	JetFuelPerAcre       float64 `json:"jetFuelPerAcre"`
}

// HarvestCostEvaluator runs the external harvest-cost model for one cluster.
type HarvestCostEvaluator interface {
	Estimate(ctx context.Context, cluster domain.Cluster, params domain.EvaluationParams) (HarvestEstimate, error)
}

// Route is a single point-to-point route.
type Route struct {
	Distance float64 // meters
	Duration float64 // seconds
}

// RoutingService wraps the road-network routing engine.
type RoutingService interface {
	Route(ctx context.Context, from, to orb.Point) (Route, error)
	// RoundTrip returns the total distance in meters of a trip that starts and ends at origin
	// and visits every stop. Zero stops yield zero without a remote call.
	RoundTrip(ctx context.Context, origin orb.Point, stops []orb.Point) (float64, error)
}

// MoveInRequest describes the equipment move-in for one period.
type MoveInRequest struct {
	HarvestSystem string  `json:"system"`
	Distance      float64 `json:"distance"` // miles
	DieselPrice   float64 `json:"dieselPrice"`
	WageFaller    float64 `json:"wageFaller"`
	WageOther     float64 `json:"wageOther"`
	LaborBenefits float64 `json:"laborBenefits"`
	PPICurrent    float64 `json:"ppiCurrent"`
}

// MoveInCost is the output of the move-in cost model.
type MoveInCost struct {
	Cost       float64 `json:"cost"`
	DieselUsed float64 `json:"dieselUsed"`
}

// MoveInCostModel prices the move-in of harvest equipment.
type MoveInCostModel interface {
	MoveIn(ctx context.Context, req MoveInRequest) (MoveInCost, error)
}

// FuelPriceSource supplies the current diesel price ($/gal) when a request omits it.
type FuelPriceSource interface {
	DieselPrice(ctx context.Context) (float64, error)
}

// SelectionStore persists per-period selections so a multi-period plan can resume.
type SelectionStore interface {
	SavePeriod(ctx context.Context, planID string, result domain.SelectionResult) error
	LoadUsed(ctx context.Context, planID string) (used []string, excluded []string, err error)
}
