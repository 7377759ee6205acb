package disciplines

import (
	"context"
	"math"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// AirfareDiscipline passes operating costs through to passengers: the fare
// per RPK is non-energy costs plus energy expenditure plus carbon tax,
// divided by traffic and marked up by the airline margin
type AirfareDiscipline struct {
	timeIndex entities.TimeIndex
	desc      mda.Descriptor
}

// NewAirfareDiscipline creates the airfare discipline
func NewAirfareDiscipline(timeIndex entities.TimeIndex) *AirfareDiscipline {
	return &AirfareDiscipline{
		timeIndex: timeIndex,
		desc: mda.Descriptor{
			Name: "airfare",
			Inputs: []mda.Port{
				mda.SeriesPort(RPK),
				mda.SeriesPort(DOCNonEnergy),
				mda.SeriesPort(EnergyExpenditure),
				mda.SeriesPort(CarbonTax),
				mda.ScalarPort(AirfareMargin),
			},
			Outputs: []mda.Port{mda.SeriesPort(AirfarePerRPK)},
		},
	}
}

var _ mda.Discipline = (*AirfareDiscipline)(nil)

func (d *AirfareDiscipline) Descriptor() mda.Descriptor { return d.desc }

func (d *AirfareDiscipline) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	rpk := in.Series(RPK)
	doc := in.Series(DOCNonEnergy)
	energy := in.Series(EnergyExpenditure)
	tax := in.Series(CarbonTax)
	margin := in.Scalar(AirfareMargin)
	if math.IsNaN(margin) {
		margin = 0
	}

	fare := d.timeIndex.NaNSeries().Map(func(year int, _ float64) float64 {
		costs := doc.AtOrZero(year) + energy.AtOrZero(year) + tax.AtOrZero(year)
		return safeRatio(costs, rpk.At(year)) * (1 + margin/100)
	})
	return map[string]entities.Value{AirfarePerRPK: entities.SeriesValue(fare)}, nil
}
