package sourcing

import (
	"math"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/ports"
)

// DefaultTonneToTon converts short tons to metric tonnes.
const DefaultTonneToTon = 1.10231

// DryTonnes converts green tons to dry metric tonnes.
func DryTonnes(green, moistureFraction, tonneToTon float64) float64 {
	return green * (1 - moistureFraction) / tonneToTon
}

// GreenTons inverts DryTonnes.
func GreenTons(dry, moistureFraction, tonneToTon float64) float64 {
	return dry * tonneToTon / (1 - moistureFraction)
}

// Assembler totals a selection and normalizes costs per dry tonne.
type Assembler struct {
	TonneToTon                float64
	UnloadingCostPerTruckload float64
}

// AssemblyInput gathers everything a run produced.
type AssemblyInput struct {
	RunID            string
	Year             int
	Target           float64
	MoistureFraction float64
	State            *SearchState
	Selected         []domain.EvaluatedCluster
	Remaining        []domain.EvaluatedCluster
	Shortfall        bool
	MoveInDistance   float64 // meters
	MoveInChunks     int
	MoveIn           ports.MoveInCost
}

// Assemble builds the SelectionResult. Per-tonne costs are NaN when no dry feedstock was selected.
func (a Assembler) Assemble(in AssemblyInput) domain.SelectionResult {
	res := domain.SelectionResult{
		RunID:     in.RunID,
		Year:      in.Year,
		Target:    in.Target,
		Shortfall: in.Shortfall,
		Selected:  in.Selected,
	}
	if in.State != nil {
		res.Outcome = in.State.Outcome
		res.Radius = in.State.Radius
		res.Failures = in.State.Failures
	}

	var totals domain.Totals
	var fuel domain.FuelUse
	res.SelectedIDs = make([]string, 0, len(in.Selected))
	for _, c := range in.Selected {
		res.SelectedIDs = append(res.SelectedIDs, c.ID)

		totals.Area += c.Area
		totals.Feedstock += c.Feedstock
		totals.CoProduct += c.CoProduct
		totals.HarvestCost += c.HarvestCost
		totals.CoProductHarvestCost += c.CoProductHarvestCost
		totals.TransportCost += c.TransportCost
		totals.Truckloads += c.Truckloads
		totals.TransportDistance += c.RoundTripDistance * float64(c.Truckloads)

		fuel.HarvestDiesel += c.HarvestDiesel
		fuel.TransportDiesel += c.TransportDiesel
		fuel.UnloadingDiesel += c.UnloadingDiesel
		fuel.Gasoline += c.Gasoline
		fuel.JetFuel += c.JetFuel
	}
	res.RemainingIDs = make([]string, 0, len(in.Remaining))
	for _, c := range in.Remaining {
		res.RemainingIDs = append(res.RemainingIDs, c.ID)
	}

	totals.UnloadingCost = float64(totals.Truckloads) * a.UnloadingCostPerTruckload
	totals.MoveInDistance = in.MoveInDistance / 1000
	totals.MoveInChunks = in.MoveInChunks
	totals.MoveInCost = in.MoveIn.Cost
	fuel.MoveInDiesel = in.MoveIn.DieselUsed
	totals.DryFeedstock = DryTonnes(totals.Feedstock, in.MoistureFraction, a.TonneToTon)

	res.Totals = totals
	res.Fuel = fuel
	res.CostPerDryT = a.perDryTonne(totals)
	return res
}

func (a Assembler) perDryTonne(t domain.Totals) domain.DryTonCosts {
	if t.DryFeedstock <= 0 {
		nan := math.NaN()
		return domain.DryTonCosts{Harvest: nan, Transport: nan, MoveIn: nan, Total: nan}
	}

	costs := domain.DryTonCosts{
		Harvest:   t.HarvestCost / t.DryFeedstock,
		Transport: (t.TransportCost + t.UnloadingCost) / t.DryFeedstock,
		MoveIn:    t.MoveInCost / t.DryFeedstock,
	}
	costs.Total = costs.Harvest + costs.Transport + costs.MoveIn
	return costs
}
