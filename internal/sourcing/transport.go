package sourcing

import "math"

// TransportModel holds the truck constants of the transportation cost model.
type TransportModel struct {
	FullPayload          float64 `yaml:"fullPayload" validate:"gt=0"` // green tons per truckload
	KmToMiles            float64 `yaml:"kmToMiles" validate:"gt=0"`
	MilesPerGallon       float64 `yaml:"milesPerGallon" validate:"gt=0"`
	OwnershipCostPerHour float64 `yaml:"ownershipCostPerHour" validate:"gte=0"`
}

// DefaultTransportModel returns the log-truck constants used when config leaves them empty.
func DefaultTransportModel() TransportModel {
	return TransportModel{
		FullPayload:          25,
		KmToMiles:            0.621371,
		MilesPerGallon:       6,
		OwnershipCostPerHour: 30,
	}
}

// TripInputs are the per-cluster and per-run inputs of a transport cost computation.
type TripInputs struct {
	Distance       float64 // one-way km
	Duration       float64 // one-way hours
	DieselPrice    float64 // $/gal
	Wage           float64 // driver $/hour
	DriverBenefits float64 // percent
	OilCost        float64 // $/mile
}

// Truckloads returns how many trucks are needed for the given feedstock.
func (m TransportModel) Truckloads(feedstock float64) int {
	if feedstock <= 0 {
		return 0
	}
	return int(math.Ceil(feedstock / m.FullPayload))
}

// RoundTripMiles converts a one-way distance in km to round-trip miles.
func (m TransportModel) RoundTripMiles(distanceKm float64) float64 {
	return distanceKm * m.KmToMiles * 2
}

// UnitCost is the round-trip cost per ton when a truck carries payload tons.
func (m TransportModel) UnitCost(in TripInputs, payload float64) float64 {
	miles := m.RoundTripMiles(in.Distance)
	hours := in.Duration * 2

	trip := in.OilCost*miles +
		(1/m.MilesPerGallon)*in.DieselPrice*miles +
		(1+in.DriverBenefits/100)*in.Wage*hours +
		m.OwnershipCostPerHour*hours
	return trip / payload
}

// Cost prices moving feedstock tons: whole truckloads at the full-payload rate and the
// remainder at the rate of a partially loaded truck.
func (m TransportModel) Cost(feedstock float64, in TripInputs) float64 {
	if feedstock <= 0 {
		return 0
	}

	partial := math.Mod(feedstock, m.FullPayload)
	full := feedstock - partial

	var cost float64
	if full > 0 {
		cost += full * m.UnitCost(in, m.FullPayload)
	}
	if partial > 0 {
		cost += partial * m.UnitCost(in, partial)
	}
	return cost
}

// Diesel is the fuel burnt by all round trips for feedstock tons.
func (m TransportModel) Diesel(feedstock float64, distanceKm float64) float64 {
	return float64(m.Truckloads(feedstock)) * m.RoundTripMiles(distanceKm) / m.MilesPerGallon
}
