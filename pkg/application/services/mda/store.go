package mda

import (
	"sort"
	"sync"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// store is the variable store owned by one Run. Each discipline's outputs
// are committed under one lock so readers never observe a partial update.
type store struct {
	mutex         sync.RWMutex
	values        map[string]entities.Value
	contributions map[string]map[string]entities.Value // aggregate variable -> discipline -> value
}

func newStore(initial map[string]entities.Value) *store {
	s := &store{
		values:        make(map[string]entities.Value, len(initial)),
		contributions: make(map[string]map[string]entities.Value),
	}
	for name, v := range initial {
		s.values[name] = v
	}
	return s
}

func (s *store) get(name string) (entities.Value, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

func (s *store) seed(name string, v entities.Value) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.values[name]; !exists {
		s.values[name] = v
	}
}

// commit stores a discipline's full output set
func (s *store) commit(discipline string, desc Descriptor, outputs map[string]entities.Value) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, port := range desc.Outputs {
		v := outputs[port.Name]
		if !port.Aggregate {
			s.values[port.Name] = v
			continue
		}
		parts := s.contributions[port.Name]
		if parts == nil {
			parts = make(map[string]entities.Value)
			s.contributions[port.Name] = parts
		}
		parts[discipline] = v
		s.values[port.Name] = sumContributions(parts)
	}
}

func (s *store) snapshot() map[string]entities.Value {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make(map[string]entities.Value, len(s.values))
	for name, v := range s.values {
		out[name] = v
	}
	return out
}

// sumContributions adds contributions in discipline-name order so the
// floating point result does not depend on commit order. Series are summed
// over the union of their ranges.
func sumContributions(parts map[string]entities.Value) entities.Value {
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	first := parts[names[0]]
	if first.Kind() == entities.KindScalar {
		total := 0.0
		for _, name := range names {
			total += parts[name].Float()
		}
		return entities.ScalarValue(total)
	}

	start, end, found := 0, -1, false
	for _, name := range names {
		ts := parts[name].Series()
		if ts.IsEmpty() {
			continue
		}
		if !found || ts.Start() < start {
			start = ts.Start()
		}
		if !found || ts.End() > end {
			end = ts.End()
		}
		found = true
	}
	total := entities.NewTimeSeries(start, end)
	for _, name := range names {
		total = total.Add(parts[name].Series())
	}
	return entities.SeriesValue(total)
}
