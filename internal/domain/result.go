package domain

// SearchOutcome is the terminal state of the radius expansion search.
type SearchOutcome string

const (
	OutcomeSearching     SearchOutcome = "searching"
	OutcomeSufficient    SearchOutcome = "sufficient"
	OutcomeSafetyStopped SearchOutcome = "safety_stopped"
)

// Totals aggregates the selected clusters of one run.
type Totals struct {
	Area                 float64 `yaml:"area"`
	Feedstock            float64 `yaml:"feedstock"`
	DryFeedstock         float64 `yaml:"dryFeedstock"`
	CoProduct            float64 `yaml:"coProduct"`
	HarvestCost          float64 `yaml:"harvestCost"`
	CoProductHarvestCost float64 `yaml:"coProductHarvestCost"`
	TransportCost        float64 `yaml:"transportCost"`
	UnloadingCost        float64 `yaml:"unloadingCost"`
	Truckloads           int     `yaml:"truckloads"`
	TransportDistance    float64 `yaml:"transportDistance"`
	MoveInDistance       float64 `yaml:"moveInDistance"`
	MoveInCost           float64 `yaml:"moveInCost"`
	MoveInChunks         int     `yaml:"moveInChunks"`
}

// FuelUse is handed to downstream life-cycle models.
type FuelUse struct {
	HarvestDiesel   float64 `yaml:"harvestDiesel"`
	TransportDiesel float64 `yaml:"transportDiesel"`
	UnloadingDiesel float64 `yaml:"unloadingDiesel"`
	MoveInDiesel    float64 `yaml:"moveInDiesel"`
	Gasoline        float64 `yaml:"gasoline"`
	JetFuel         float64 `yaml:"jetFuel"`
}

// TotalDiesel sums every diesel figure.
func (f FuelUse) TotalDiesel() float64 {
	return f.HarvestDiesel + f.TransportDiesel + f.UnloadingDiesel + f.MoveInDiesel
}

// DryTonCosts are per-dry-ton costs. Values are NaN when no dry feedstock was selected.
type DryTonCosts struct {
	Harvest   float64 `yaml:"harvest"`
	Transport float64 `yaml:"transport"`
	MoveIn    float64 `yaml:"moveIn"`
	Total     float64 `yaml:"total"`
}

// SelectionResult is the output of one sourcing run.
type SelectionResult struct {
	RunID     string        `yaml:"runId"`
	Year      int           `yaml:"year"`
	Outcome   SearchOutcome `yaml:"outcome"`
	Shortfall bool          `yaml:"shortfall"`
	Radius    float64       `yaml:"radius"`
	Target    float64       `yaml:"target"`

	Selected     []EvaluatedCluster `yaml:"selected"`
	SelectedIDs  []string           `yaml:"selectedIds"`
	RemainingIDs []string           `yaml:"remainingIds"`
	Failures     []ClusterFailure   `yaml:"failures"`

	Totals      Totals      `yaml:"totals"`
	Fuel        FuelUse     `yaml:"fuel"`
	CostPerDryT DryTonCosts `yaml:"costPerDryTonne"`
}
