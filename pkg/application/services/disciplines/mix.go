package disciplines

import (
	"context"
	"fmt"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/events"
)

// Mandate variable fields of a pathway
const (
	ShareMandateField    = "share_mandate"    // % of the carrier
	QuantityMandateField = "quantity_mandate" // MJ
)

// mandateTolerance absorbs rounding in configured percentages
const mandateTolerance = 1e-9

// MixDiscipline splits the demand for one carrier between its pathways.
// Share mandates are served first, quantity mandates next, and the default
// pathway covers the remainder. Quantity mandates that exceed what is left
// are scaled down proportionally.
type MixDiscipline struct {
	timeIndex entities.TimeIndex
	carrier   entities.EnergyType
	pathways  []*entities.Pathway
	logger    log.Logger
	journal   events.Journal
	desc      mda.Descriptor
}

// NewMixDiscipline creates the mix for carrier. Exactly one pathway must be
// the default.
func NewMixDiscipline(
	timeIndex entities.TimeIndex,
	carrier entities.EnergyType,
	pathways []*entities.Pathway,
	logger log.Logger,
	journal events.Journal,
) (*MixDiscipline, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	defaults := 0
	inputs := []mda.Port{mda.SeriesPort(EnergyConsumption(carrier))}
	outputs := make([]mda.Port, 0, 2*len(pathways))
	for _, p := range pathways {
		if p.Carrier != carrier {
			return nil, fmt.Errorf("pathway %s produces %s, not %s", p.Name, p.Carrier, carrier)
		}
		if p.Default {
			defaults++
		}
		switch p.Mandate {
		case entities.ShareMandate:
			inputs = append(inputs, mda.SeriesPort(p.Var(ShareMandateField)))
		case entities.QuantityMandate:
			inputs = append(inputs, mda.SeriesPort(p.Var(QuantityMandateField)))
		}
		outputs = append(outputs,
			mda.SeriesPort(p.Var("energy_consumption")),
			mda.SeriesPort(p.Var("share")),
		)
	}
	if defaults != 1 {
		return nil, fmt.Errorf("carrier %s needs exactly one default pathway, got %d", carrier, defaults)
	}

	return &MixDiscipline{
		timeIndex: timeIndex,
		carrier:   carrier,
		pathways:  pathways,
		logger:    logger,
		journal:   journal,
		desc: mda.Descriptor{
			Name:    "mix:" + carrier.String(),
			Inputs:  inputs,
			Outputs: outputs,
		},
	}, nil
}

var _ mda.Discipline = (*MixDiscipline)(nil)

func (d *MixDiscipline) Descriptor() mda.Descriptor { return d.desc }

func (d *MixDiscipline) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	demand := in.Series(EnergyConsumption(d.carrier))

	volumes := make(map[string]*entities.TimeSeries, len(d.pathways))
	mandates := make(map[string]entities.TimeSeries, len(d.pathways))
	for _, p := range d.pathways {
		zero := d.timeIndex.ZeroSeries()
		volumes[p.Name] = &zero
		switch p.Mandate {
		case entities.ShareMandate:
			mandates[p.Name] = in.Series(p.Var(ShareMandateField))
		case entities.QuantityMandate:
			mandates[p.Name] = in.Series(p.Var(QuantityMandateField))
		}
	}

	for year := d.timeIndex.HistoricStartYear; year <= d.timeIndex.EndYear; year++ {
		total := demand.At(year)
		if math.IsNaN(total) || total <= 0 {
			continue
		}

		remaining := total
		shareSum := 0.0
		for _, p := range d.pathways {
			if p.Mandate != entities.ShareMandate {
				continue
			}
			share := mandateAt(mandates[p.Name], year)
			shareSum += share
			v := total * share / 100
			volumes[p.Name].Set(year, v)
			remaining -= v
		}
		if shareSum > 100+mandateTolerance {
			return nil, fmt.Errorf("%s share mandates sum to %g%% in %d, above 100%%", d.carrier, shareSum, year)
		}

		requested := 0.0
		for _, p := range d.pathways {
			if p.Mandate == entities.QuantityMandate {
				requested += mandateAt(mandates[p.Name], year)
			}
		}
		scale := 1.0
		if requested > remaining {
			scale = math.Max(remaining, 0) / requested
			d.scaledDown(year, scale)
		}
		for _, p := range d.pathways {
			if p.Mandate != entities.QuantityMandate {
				continue
			}
			v := mandateAt(mandates[p.Name], year) * scale
			volumes[p.Name].Set(year, v)
			remaining -= v
		}

		for _, p := range d.pathways {
			if p.Default {
				volumes[p.Name].Set(year, math.Max(remaining, 0))
			}
		}
	}

	out := make(map[string]entities.Value, 2*len(d.pathways))
	for _, p := range d.pathways {
		volume := *volumes[p.Name]
		out[p.Var("energy_consumption")] = entities.SeriesValue(volume)
		out[p.Var("share")] = entities.SeriesValue(volume.Map(func(year int, v float64) float64 {
			return safeRatio(v*100, demand.At(year))
		}))
	}
	return out, nil
}

func (d *MixDiscipline) scaledDown(year int, ratio float64) {
	level.Warn(d.logger).Log(
		"msg", "quantity mandates exceed remaining demand, scaling down",
		"carrier", d.carrier,
		"year", year,
		"ratio", ratio,
	)
	if d.journal == nil {
		return
	}
	stream := "mandates:" + d.carrier.String()
	_, err := d.journal.Record(stream, events.MandateScaledDown{
		Carrier: d.carrier.String(),
		Year:    year,
		Ratio:   ratio,
	})
	if err != nil {
		level.Warn(d.logger).Log("msg", "failed to journal event", "event", events.MandateScaledDownEvent, "err", err)
	}
}

// mandateAt reads a mandate, treating undefined years as no mandate
func mandateAt(ts entities.TimeSeries, year int) float64 {
	v := ts.At(year)
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
