package dto

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/vsinha/aerosim/pkg/application/services/costs"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// ScenarioResult contains the complete output of one scenario computation
type ScenarioResult struct {
	RunID      string                           `json:"run_id"`
	TimeIndex  entities.TimeIndex               `json:"time_index"`
	Converged  bool                             `json:"converged"`
	Iterations map[string]int                   `json:"iterations,omitempty"`
	Order      []string                         `json:"order"`
	Duration   time.Duration                    `json:"duration"`
	Variables  map[string]entities.Value        `json:"variables"`
	Info       map[string]entities.VariableInfo `json:"info,omitempty"`

	// FloatOutputs holds every scalar variable for quick lookup
	FloatOutputs map[string]float64 `json:"-"`
	// Vintages holds the commissioned capacity of each bottom-up pathway
	Vintages map[string][]VintageSummary `json:"vintages,omitempty"`
	Costs    *costs.CostSummary          `json:"costs,omitempty"`
}

// VintageSummary is the reporting view of one commissioned vintage
type VintageSummary struct {
	Pathway           string  `json:"pathway"`
	CommissioningYear int     `json:"commissioning_year"`
	EISYear           int     `json:"eis_year"`
	Capacity          float64 `json:"capacity"`
	AnnualProduction  float64 `json:"annual_production"`
	Lifespan          int     `json:"lifespan"`
	LifetimeCost      Number  `json:"lifetime_cost"`
	CO2Factor         Number  `json:"co2_factor"` // g/MJ at the EIS year
}

// Number is a float that encodes NaN as null
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// SeriesNames returns the names of every time-series variable, sorted
func (r *ScenarioResult) SeriesNames() []string {
	names := make([]string, 0, len(r.Variables))
	for name, v := range r.Variables {
		if v.Kind() == entities.KindSeries {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Series returns a time-series variable
func (r *ScenarioResult) Series(name string) (entities.TimeSeries, bool) {
	v, ok := r.Variables[name]
	if !ok || v.Kind() != entities.KindSeries {
		return entities.TimeSeries{}, false
	}
	return v.Series(), true
}

// PathwayNames returns the bottom-up pathways with vintages, sorted
func (r *ScenarioResult) PathwayNames() []string {
	names := make([]string, 0, len(r.Vintages))
	for name := range r.Vintages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
