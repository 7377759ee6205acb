package disciplines

import (
	"context"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// ResourceBalance compares what bottom-up pathways consume of each resource
// with its exogenous availability. Exceeding availability is reported, not
// enforced.
type ResourceBalance struct {
	timeIndex entities.TimeIndex
	resources []string
	logger    log.Logger
	desc      mda.Descriptor
}

// NewResourceBalance creates the balance over resources
func NewResourceBalance(timeIndex entities.TimeIndex, resources []string, logger log.Logger) *ResourceBalance {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	inputs := make([]mda.Port, 0, 2*len(resources))
	outputs := make([]mda.Port, 0, len(resources))
	for _, r := range resources {
		inputs = append(inputs,
			mda.SeriesPort(ResourceConsumption(r)),
			mda.SeriesPort(ResourceAvailability(r)),
		)
		outputs = append(outputs, mda.SeriesPort(ResourceAvailabilityRatio(r)))
	}
	return &ResourceBalance{
		timeIndex: timeIndex,
		resources: append([]string(nil), resources...),
		logger:    logger,
		desc:      mda.Descriptor{Name: "resources", Inputs: inputs, Outputs: outputs},
	}
}

var _ mda.Discipline = (*ResourceBalance)(nil)

func (d *ResourceBalance) Descriptor() mda.Descriptor { return d.desc }

func (d *ResourceBalance) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	out := make(map[string]entities.Value, len(d.resources))
	for _, r := range d.resources {
		consumption := in.Series(ResourceConsumption(r))
		availability := in.Series(ResourceAvailability(r))

		ratio := d.timeIndex.NaNSeries()
		firstExceeded := 0
		for year := d.timeIndex.HistoricStartYear; year <= d.timeIndex.EndYear; year++ {
			v := safeRatio(consumption.AtOrZero(year)*100, availability.At(year))
			ratio.Set(year, v)
			if firstExceeded == 0 && !d.timeIndex.IsHistoric(year) && !math.IsNaN(v) && v > 100 {
				firstExceeded = year
			}
		}
		if firstExceeded != 0 {
			level.Warn(d.logger).Log("msg", "resource consumption exceeds availability", "resource", r, "year", firstExceeded)
		}
		out[ResourceAvailabilityRatio(r)] = entities.SeriesValue(ratio)
	}
	return out, nil
}
