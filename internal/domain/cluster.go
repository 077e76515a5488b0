package domain

import "github.com/paulmach/orb"

// Cluster is a fixed-size parcel of harvestable land scoped to one treatment and year.
type Cluster struct {
	ID          string `yaml:"id"`
	TreatmentID int    `yaml:"treatmentId"`
	Year        int    `yaml:"year"`

	LandingLat float64 `yaml:"landingLat"`
	LandingLng float64 `yaml:"landingLng"`
	CenterLat  float64 `yaml:"centerLat"`
	CenterLng  float64 `yaml:"centerLng"`

	Area float64 `yaml:"area"` // acres

	LandUse    string `yaml:"landUse,omitempty"`
	ForestType string `yaml:"forestType,omitempty"`
	HazClass   int    `yaml:"hazClass,omitempty"`
	SiteClass  int    `yaml:"siteClass,omitempty"`
	County     string `yaml:"county,omitempty"`
}

// Center returns the representative point used for repository queries and routing.
func (c Cluster) Center() orb.Point {
	return orb.Point{c.CenterLng, c.CenterLat}
}

// Landing returns the point where material is collected.
func (c Cluster) Landing() orb.Point {
	return orb.Point{c.LandingLng, c.LandingLat}
}

// EvaluatedCluster carries the derived economics of a cluster. Fields are written
// once by the evaluator and never mutated afterwards.
type EvaluatedCluster struct {
	Cluster `yaml:",inline"`

	Feedstock            float64 `yaml:"feedstock"`            // green tons
	CoProduct            float64 `yaml:"coProduct"`            // green tons
	HarvestCost          float64 `yaml:"harvestCost"`          // $
	CoProductHarvestCost float64 `yaml:"coProductHarvestCost"` // $

	TransportDistance float64 `yaml:"transportDistance"` // one-way km
	TransportDuration float64 `yaml:"transportDuration"` // one-way hours
	RoundTripDistance float64 `yaml:"roundTripDistance"` // km
	TransportCost     float64 `yaml:"transportCost"`     // $
	Truckloads        int     `yaml:"truckloads"`
	TransportDiesel   float64 `yaml:"transportDiesel"` // gal
	HarvestDiesel     float64 `yaml:"harvestDiesel"`   // gal
	Gasoline          float64 `yaml:"gasoline"`        // gal
	JetFuel           float64 `yaml:"jetFuel"`         // gal
	UnloadingDiesel   float64 `yaml:"unloadingDiesel"` // gal
}

// UnitCost is the delivered cost per green ton.
func (e EvaluatedCluster) UnitCost() float64 {
	return (e.HarvestCost + e.TransportCost) / e.Feedstock
}

// ClusterFailure records why a cluster was excluded from a run.
type ClusterFailure struct {
	ClusterID string `yaml:"clusterId"`
	Reason    string `yaml:"reason"`
}
