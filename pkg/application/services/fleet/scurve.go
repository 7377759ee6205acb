package fleet

import (
	"math"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// ShareLimit is the percentage below which an S-curve is clamped to 0 (and
// above 100 minus which it is clamped to 100)
const ShareLimit = 2.0

// SCurve returns the market share (%) in year of a generation entering
// service in eis and taking life years to replace its predecessor. The
// curve is centred on eis + life/2 and reaches ShareLimit at eis.
func SCurve(eis, life, year int) float64 {
	half := float64(life) / 2
	k := math.Log(100/ShareLimit-1) / half
	share := 100 / (1 + math.Exp(-k*(float64(year)-float64(eis)-half)))
	switch {
	case share < ShareLimit:
		return 0
	case share > 100-ShareLimit:
		return 100
	default:
		return share
	}
}

// SCurveSeries evaluates SCurve over [start, end]
func SCurveSeries(eis, life, start, end int) entities.TimeSeries {
	return entities.NewTimeSeries(start, end).Map(func(year int, _ float64) float64 {
		return SCurve(eis, life, year)
	})
}
