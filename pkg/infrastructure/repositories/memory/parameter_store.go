package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/domain/repositories"
)

// ParameterStore provides in-memory parameter storage. It is read-only while a
// compute pass runs (callers work on a Snapshot) and mutable between runs.
type ParameterStore struct {
	mutex  sync.RWMutex
	params map[string]entities.Value
	infos  map[string]entities.VariableInfo
}

// NewParameterStore creates a new in-memory parameter store
func NewParameterStore(expectedParams int) *ParameterStore {
	return &ParameterStore{
		params: make(map[string]entities.Value, expectedParams),
		infos:  make(map[string]entities.VariableInfo),
	}
}

// Verify interface compliance
var _ repositories.ParameterRepository = (*ParameterStore)(nil)

// LoadParameters loads parameters into the store, replacing existing values
func (s *ParameterStore) LoadParameters(params map[string]entities.Value) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for name, value := range params {
		if name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		s.params[name] = cloneValue(value)
	}
	return nil
}

// Get returns the parameter value for name
func (s *ParameterStore) Get(name string) (entities.Value, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.params[name]
	if !exists {
		return entities.Value{}, fmt.Errorf("parameter not found: %s", name)
	}
	return cloneValue(value), nil
}

// Has reports whether a parameter is defined
func (s *ParameterStore) Has(name string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, exists := s.params[name]
	return exists
}

// Set overrides a parameter between runs. The kind of an existing parameter cannot change.
func (s *ParameterStore) Set(name string, value entities.Value) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, exists := s.params[name]; exists && existing.Kind() != value.Kind() {
		return fmt.Errorf(
			"parameter %s is a %s, cannot assign a %s",
			name,
			existing.Kind(),
			value.Kind(),
		)
	}
	s.params[name] = cloneValue(value)
	return nil
}

// Names returns all parameter names in sorted order
func (s *ParameterStore) Names() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.params))
	for name := range s.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns an independent copy of every parameter
func (s *ParameterStore) Snapshot() map[string]entities.Value {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(map[string]entities.Value, len(s.params))
	for name, value := range s.params {
		out[name] = cloneValue(value)
	}
	return out
}

// LoadInfo loads the data-information side table
func (s *ParameterStore) LoadInfo(infos []entities.VariableInfo) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, info := range infos {
		if info.Name == "" {
			return fmt.Errorf("variable info name cannot be empty")
		}
		s.infos[info.Name] = info
	}
	return nil
}

// Info returns the reporting metadata for a variable
func (s *ParameterStore) Info(name string) (entities.VariableInfo, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	info, ok := s.infos[name]
	return info, ok
}

func cloneValue(v entities.Value) entities.Value {
	if v.Kind() == entities.KindSeries {
		return entities.SeriesValue(v.Series().Clone())
	}
	return v
}
