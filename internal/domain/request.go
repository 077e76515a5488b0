package domain

import "github.com/paulmach/orb"

// DefaultExpansionFactor is applied when a request leaves ExpansionFactor unset.
const DefaultExpansionFactor = 1.3

// RecoveryFractions are the shares of residue recovered per harvest family (percent).
type RecoveryFractions struct {
	WholeTree   float64 `yaml:"wholeTree" validate:"gte=0,lte=100"`
	CutToLength float64 `yaml:"cutToLength" validate:"gte=0,lte=100"`
}

// SourcingRequest describes one period of feedstock demand for a facility.
type SourcingRequest struct {
	FacilityLat float64 `yaml:"facilityLat" validate:"gte=-90,lte=90"`
	FacilityLng float64 `yaml:"facilityLng" validate:"gte=-180,lte=180"`
	TreatmentID int     `yaml:"treatmentId" validate:"gt=0"`
	Year        int     `yaml:"year" validate:"gt=0"`

	// AnnualDemand is expressed in dry metric tonnes.
	AnnualDemand    float64 `yaml:"annualDemand" validate:"gt=0"`
	HarvestSystem   string  `yaml:"harvestSystem" validate:"required"`
	ExpansionFactor float64 `yaml:"expansionFactor" validate:"omitempty,gte=1"`

	DieselPrice     float64           `yaml:"dieselPrice" validate:"gte=0"`
	MoistureContent float64           `yaml:"moistureContent" validate:"gte=0,lt=100"`
	WageFaller      float64           `yaml:"wageFaller" validate:"gte=0"`
	WageOther       float64           `yaml:"wageOther" validate:"gte=0"`
	WageTruckDriver float64           `yaml:"wageTruckDriver" validate:"gte=0"`
	LaborBenefits   float64           `yaml:"laborBenefits" validate:"gte=0"`
	DriverBenefits  float64           `yaml:"driverBenefits" validate:"gte=0"`
	OilCost         float64           `yaml:"oilCost" validate:"gte=0"`
	PPICurrent      float64           `yaml:"ppiCurrent" validate:"gte=0"`
	Recovery        RecoveryFractions `yaml:"residueRecovery"`

	UsedIDs     []string `yaml:"usedIds"`
	ExcludedIDs []string `yaml:"excludedIds"`
}

// Facility returns the facility location as a point.
func (r SourcingRequest) Facility() orb.Point {
	return orb.Point{r.FacilityLng, r.FacilityLat}
}

// MoistureFraction converts the moisture content percentage to a fraction.
func (r SourcingRequest) MoistureFraction() float64 {
	return r.MoistureContent / 100
}

// Expansion returns the effective candidate expansion factor.
func (r SourcingRequest) Expansion() float64 {
	if r.ExpansionFactor <= 0 {
		return DefaultExpansionFactor
	}
	return r.ExpansionFactor
}

// EvaluationParams are the price and wage inputs shared by every cluster evaluation in a run.
type EvaluationParams struct {
	HarvestSystem string
	// RecoveryFraction is the share for the system's own family; zero for log-only systems.
	RecoveryFraction float64
	Recovery         RecoveryFractions
	DieselPrice      float64
	MoistureContent  float64
	WageFaller       float64
	WageOther        float64
	WageTruckDriver  float64
	LaborBenefits    float64
	DriverBenefits   float64
	OilCost          float64
	PPICurrent       float64
}
