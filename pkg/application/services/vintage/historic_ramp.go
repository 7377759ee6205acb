package vintage

import (
	"fmt"
	"math"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// HistoricRamp replaces the historic part of demand with an exponential
// ramp from (introductionYear, introductionVolume) to the last historic
// year's demand, so that the planner commissions the installed base a
// technology already had when prospection starts. Demand is zero before
// the introduction year. Prospective years are left untouched.
func HistoricRamp(
	demand entities.TimeSeries,
	timeIndex entities.TimeIndex,
	introductionYear int,
	introductionVolume float64,
) (entities.TimeSeries, error) {
	lastHistoric := timeIndex.LastHistoricYear()
	target := demandAt(demand, lastHistoric)

	out := demand.Clone()
	if target <= 0 {
		return out, nil
	}

	if introductionYear <= timeIndex.HistoricStartYear {
		return entities.TimeSeries{}, fmt.Errorf(
			"introduction year %d must be after historic start year %d",
			introductionYear,
			timeIndex.HistoricStartYear,
		)
	}
	if introductionYear > lastHistoric {
		return entities.TimeSeries{}, fmt.Errorf(
			"introduction year %d cannot be after last historic year %d",
			introductionYear,
			lastHistoric,
		)
	}
	if introductionVolume <= 0 {
		return entities.TimeSeries{}, fmt.Errorf("introduction volume must be positive, got %g", introductionVolume)
	}

	span := float64(lastHistoric - introductionYear)
	for year := timeIndex.HistoricStartYear; year <= lastHistoric; year++ {
		if !out.Contains(year) {
			continue
		}
		switch {
		case year < introductionYear:
			out.Set(year, 0)
		case span == 0:
			out.Set(year, target)
		default:
			t := float64(year-introductionYear) / span
			out.Set(year, introductionVolume*math.Pow(target/introductionVolume, t))
		}
	}
	return out, nil
}
