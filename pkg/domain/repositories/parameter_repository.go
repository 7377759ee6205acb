package repositories

import "github.com/vsinha/aerosim/pkg/domain/entities"

// ParameterRepository provides access to scenario input parameters
type ParameterRepository interface {
	Get(name string) (entities.Value, error)
	Has(name string) bool
	Set(name string, value entities.Value) error
	Names() []string
	LoadParameters(params map[string]entities.Value) error

	// Snapshot returns an independent copy of every parameter, used as the
	// initial inputs of one compute pass.
	Snapshot() map[string]entities.Value

	// Info returns the reporting metadata of a variable, if any was loaded.
	Info(name string) (entities.VariableInfo, bool)
	LoadInfo(infos []entities.VariableInfo) error
}
