package sourcing

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/ports"
)

func sampleEstimate() ports.HarvestEstimate {
	return ports.HarvestEstimate{
		TotalYieldPerAcre:    40,
		TotalCostPerAcre:     2000,
		ResidualYieldPerAcre: 12,
		ResidualCostPerAcre:  500,
		DieselPerAcre:        3,
		GasolinePerAcre:      0.5,
		JetFuelPerAcre:       0.1,
	}
}

func sampleParams() domain.EvaluationParams {
	return domain.EvaluationParams{
		HarvestSystem:   "Ground-Based Mech WT",
		DieselPrice:     4,
		WageTruckDriver: 20,
		DriverBenefits:  50,
		OilCost:         0.35,
	}
}

func TestEvaluatorComputesEconomics(t *testing.T) {
	t.Parallel()

	harvest := &fakeHarvest{estimate: sampleEstimate()}
	routing := &fakeRouting{}
	model := DefaultTransportModel()
	ev := NewEvaluator(harvest, routing, model, 1.5)

	cluster := clusterAt("c1", 40000, 10)
	got, err := ev.Evaluate(context.Background(), orb.Point{}, cluster, sampleParams())
	require.NoError(t, err)

	assert.InDelta(t, 120, got.Feedstock, 1e-9)
	assert.InDelta(t, 280, got.CoProduct, 1e-9)
	assert.InDelta(t, 5000, got.HarvestCost, 1e-9)
	assert.InDelta(t, 15000, got.CoProductHarvestCost, 1e-9)

	assert.InDelta(t, 50, got.TransportDistance, 1e-6)
	assert.InDelta(t, 50.0/60, got.TransportDuration, 1e-6)
	assert.InDelta(t, 100, got.RoundTripDistance, 1e-6)
	assert.Equal(t, 5, got.Truckloads)

	trip := TripInputs{Distance: got.TransportDistance, Duration: got.TransportDuration, DieselPrice: 4, Wage: 20, DriverBenefits: 50, OilCost: 0.35}
	assert.InDelta(t, model.Cost(120, trip), got.TransportCost, 1e-9)

	assert.InDelta(t, 30, got.HarvestDiesel, 1e-9)
	assert.InDelta(t, 5, got.Gasoline, 1e-9)
	assert.InDelta(t, 1, got.JetFuel, 1e-9)
	assert.InDelta(t, 7.5, got.UnloadingDiesel, 1e-9)
	assert.InDelta(t, model.Diesel(120, got.TransportDistance), got.TransportDiesel, 1e-9)
}

func TestEvaluatorRejectsNonPositiveFeedstock(t *testing.T) {
	t.Parallel()

	est := sampleEstimate()
	est.ResidualYieldPerAcre = 0
	harvest := &fakeHarvest{estimate: est}
	routing := &fakeRouting{}
	ev := NewEvaluator(harvest, routing, DefaultTransportModel(), 1.5)

	_, err := ev.Evaluate(context.Background(), orb.Point{}, clusterAt("c1", 1000, 10), sampleParams())
	require.ErrorIs(t, err, domain.ErrNonPositiveFeedstock)

	var evalErr *domain.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "c1", evalErr.ClusterID)
	assert.Zero(t, routing.routeCalls)
}

func TestEvaluatorWrapsCollaboratorFailures(t *testing.T) {
	t.Parallel()

	cluster := clusterAt("c1", 1000, 10)

	harvest := &fakeHarvest{failures: map[string]error{"c1": errors.New("model timeout")}}
	ev := NewEvaluator(harvest, &fakeRouting{}, DefaultTransportModel(), 1.5)
	_, err := ev.Evaluate(context.Background(), orb.Point{}, cluster, sampleParams())
	var evalErr *domain.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "harvest model", evalErr.Stage)

	routing := &fakeRouting{failLat: map[float64]error{cluster.LandingLat: errors.New("no route")}}
	ev = NewEvaluator(&fakeHarvest{estimate: sampleEstimate()}, routing, DefaultTransportModel(), 1.5)
	_, err = ev.Evaluate(context.Background(), orb.Point{}, cluster, sampleParams())
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "routing", evalErr.Stage)
}
