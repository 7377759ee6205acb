package fleet

import (
	"fmt"
	"math"
	"sort"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// Generation is one aircraft of a subcategory with its share of the category
type Generation struct {
	Key         entities.FleetKey
	EnergyType  entities.EnergyType
	Performance entities.AircraftPerformance
	// Share is the % of the category fleet flown by this generation
	Share entities.TimeSeries
}

// EnergyTypeFleet aggregates the generations of one energy type
type EnergyTypeFleet struct {
	Share             entities.TimeSeries // % of the category
	EnergyPerASK      entities.TimeSeries
	DOCNonEnergy      entities.TimeSeries
	EmissionIndexNOx  entities.TimeSeries
	EmissionIndexSoot entities.TimeSeries
}

// CategoryFleet is the renewed fleet of one category
type CategoryFleet struct {
	Category    string
	Generations []Generation
	ByEnergy    map[entities.EnergyType]*EnergyTypeFleet

	// Share-weighted means across energy types
	EnergyPerASK      entities.TimeSeries
	DOCNonEnergy      entities.TimeSeries
	EmissionIndexNOx  entities.TimeSeries
	EmissionIndexSoot entities.TimeSeries
}

// RenewalModel derives generation shares from S-curves and aggregates
// fleet-mean characteristics per category
type RenewalModel struct {
	start int
	end   int
}

// NewRenewalModel creates a model over the given years
func NewRenewalModel(start, end int) (*RenewalModel, error) {
	if end < start {
		return nil, fmt.Errorf("fleet end year %d is before start year %d", end, start)
	}
	return &RenewalModel{start: start, end: end}, nil
}

// Renew computes the shares and the aggregated characteristics of category
func (m *RenewalModel) Renew(category entities.Category) (*CategoryFleet, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}

	fleet := &CategoryFleet{
		Category: category.Name,
		ByEnergy: make(map[entities.EnergyType]*EnergyTypeFleet, len(entities.EnergyTypes)),
	}
	for _, sub := range category.Subcategories {
		fleet.Generations = append(fleet.Generations, m.subcategoryGenerations(category, sub)...)
	}

	for _, energyType := range entities.EnergyTypes {
		var members []Generation
		for _, g := range fleet.Generations {
			if g.EnergyType == energyType {
				members = append(members, g)
			}
		}
		fleet.ByEnergy[energyType] = m.aggregate(members, totalShare(category))
	}

	all := m.aggregate(fleet.Generations, totalShare(category))
	fleet.EnergyPerASK = all.EnergyPerASK
	fleet.DOCNonEnergy = all.DOCNonEnergy
	fleet.EmissionIndexNOx = all.EmissionIndexNOx
	fleet.EmissionIndexSoot = all.EmissionIndexSoot
	return fleet, nil
}

// subcategoryGenerations telescopes the S-curves of the chain old reference,
// recent reference, a_1..a_n (ascending EIS) so that each generation keeps
// its own curve minus the curve of the generation replacing it:
//
//	old = 100 - S_recent, recent = S_recent - S_1, a_i = S_i - S_i+1, a_n = S_n
func (m *RenewalModel) subcategoryGenerations(category entities.Category, sub entities.Subcategory) []Generation {
	aircraft := make([]entities.Aircraft, len(sub.Aircraft))
	copy(aircraft, sub.Aircraft)
	sort.SliceStable(aircraft, func(i, j int) bool {
		return aircraft[i].EntryIntoService < aircraft[j].EntryIntoService
	})

	curves := make([]entities.TimeSeries, 0, len(aircraft)+1)
	curves = append(curves, SCurveSeries(sub.RecentReference.EntryIntoService, category.Life, m.start, m.end))
	for _, ac := range aircraft {
		curves = append(curves, SCurveSeries(ac.EntryIntoService, category.Life, m.start, m.end))
	}

	scale := sub.Share / 100
	key := func(name string) entities.FleetKey {
		return entities.FleetKey{Category: category.Name, Subcategory: sub.Name, Aircraft: name, Field: "share"}
	}

	generations := make([]Generation, 0, len(aircraft)+2)
	generations = append(generations, Generation{
		Key:         key(sub.OldReference.Name),
		EnergyType:  entities.DropInFuel,
		Performance: sub.OldReference.Performance,
		Share: curves[0].Map(func(_ int, s float64) float64 {
			return (100 - s) * scale
		}),
	})

	for i := range curves {
		share := curves[i]
		if i+1 < len(curves) {
			share = share.Sub(curves[i+1])
		}
		share = share.Scale(scale)

		if i == 0 {
			generations = append(generations, Generation{
				Key:         key(sub.RecentReference.Name),
				EnergyType:  entities.DropInFuel,
				Performance: sub.RecentReference.Performance,
				Share:       share,
			})
			continue
		}
		ac := aircraft[i-1]
		generations = append(generations, Generation{
			Key:         key(ac.Name),
			EnergyType:  ac.EnergyType,
			Performance: ac.Performance(sub.RecentReference.Performance),
			Share:       share,
		})
	}
	return generations
}

// aggregate computes share-weighted means over generations. The energy
// share is expressed relative to the category's allotted total.
func (m *RenewalModel) aggregate(generations []Generation, total float64) *EnergyTypeFleet {
	out := &EnergyTypeFleet{
		Share:             entities.NewTimeSeries(m.start, m.end),
		EnergyPerASK:      entities.NewNaNSeries(m.start, m.end),
		DOCNonEnergy:      entities.NewNaNSeries(m.start, m.end),
		EmissionIndexNOx:  entities.NewNaNSeries(m.start, m.end),
		EmissionIndexSoot: entities.NewNaNSeries(m.start, m.end),
	}

	for year := m.start; year <= m.end; year++ {
		var share, energy, doc, nox, soot float64
		for _, g := range generations {
			s := g.Share.At(year)
			share += s
			energy += s * g.Performance.EnergyPerASK
			doc += s * g.Performance.DOCNonEnergy
			nox += s * g.Performance.EmissionIndexNOx
			soot += s * g.Performance.EmissionIndexSoot
		}
		if total > 0 {
			out.Share.Set(year, share/total*100)
		}
		if share <= 0 || math.IsNaN(share) {
			continue
		}
		out.EnergyPerASK.Set(year, energy/share)
		out.DOCNonEnergy.Set(year, doc/share)
		out.EmissionIndexNOx.Set(year, nox/share)
		out.EmissionIndexSoot.Set(year, soot/share)
	}
	return out
}

func totalShare(category entities.Category) float64 {
	total := 0.0
	for _, sub := range category.Subcategories {
		total += sub.Share
	}
	return total
}
