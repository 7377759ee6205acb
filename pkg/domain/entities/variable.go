package entities

// VariableInfo describes a variable for reporting; the engine never reads it
type VariableInfo struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Unit        string `json:"unit" yaml:"unit" mapstructure:"unit"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
}
