package entities

import (
	"fmt"
	"strings"
)

// ModelKind selects how a pathway's cost and emission trajectories are produced
type ModelKind int

const (
	// TopDown pathways read user-supplied cost and emission curves directly.
	TopDown ModelKind = iota
	// BottomUp pathways derive them from a capacity-commissioning schedule.
	BottomUp
)

// String method for ModelKind enum
func (m ModelKind) String() string {
	switch m {
	case TopDown:
		return "top_down"
	case BottomUp:
		return "bottom_up"
	default:
		return "unknown"
	}
}

// ParseModelKind converts a configuration string into a ModelKind
func ParseModelKind(s string) (ModelKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "top_down", "topdown":
		return TopDown, nil
	case "bottom_up", "bottomup":
		return BottomUp, nil
	default:
		return TopDown, fmt.Errorf("unknown model kind: %s", s)
	}
}

// MandateKind represents how a pathway's share of its carrier is imposed
type MandateKind int

const (
	NoMandate MandateKind = iota
	ShareMandate
	QuantityMandate
)

// String method for MandateKind enum
func (m MandateKind) String() string {
	switch m {
	case NoMandate:
		return "none"
	case ShareMandate:
		return "share"
	case QuantityMandate:
		return "quantity"
	default:
		return "unknown"
	}
}

// ParseMandateKind converts a configuration string into a MandateKind
func ParseMandateKind(s string) (MandateKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoMandate, nil
	case "share":
		return ShareMandate, nil
	case "quantity":
		return QuantityMandate, nil
	default:
		return NoMandate, fmt.Errorf("unknown mandate kind: %s", s)
	}
}

// Resource is a shared input (electricity, CO2, biomass...) consumed by pathways
type Resource struct {
	Name string
	Unit string
}

// Process is an add-on step (capture, compression...) with its own unit cost and emission factors
type Process struct {
	Name string
}

// Pathway represents one production route for an energy carrier
type Pathway struct {
	Name      string
	Carrier   EnergyType
	Model     ModelKind
	Default   bool // covers whatever demand the mandated pathways leave
	Mandate   MandateKind
	Resources []string
	Processes []string
	Species   []string // pollutants tracked in addition to CO2
}

// NewPathway creates a validated Pathway
func NewPathway(name string, carrier EnergyType, model ModelKind, isDefault bool, mandate MandateKind) (*Pathway, error) {
	if name == "" {
		return nil, fmt.Errorf("pathway name cannot be empty")
	}
	if strings.ContainsAny(name, " :") {
		return nil, fmt.Errorf("pathway name cannot contain spaces or colons: %q", name)
	}
	if isDefault && mandate != NoMandate {
		return nil, fmt.Errorf("default pathway %s cannot carry a %s mandate", name, mandate)
	}

	return &Pathway{
		Name:    name,
		Carrier: carrier,
		Model:   model,
		Default: isDefault,
		Mandate: mandate,
	}, nil
}

// Var returns the variable name of a pathway-scoped field
func (p Pathway) Var(field string) string {
	return p.Name + "_" + field
}

// ResourceVar returns the variable name of a pathway-scoped resource field
func (p Pathway) ResourceVar(resource, field string) string {
	return p.Name + "_" + resource + "_" + field
}

// AllSpecies returns CO2 followed by any additional tracked species
func (p Pathway) AllSpecies() []string {
	out := []string{"co2"}
	for _, s := range p.Species {
		if s != "co2" {
			out = append(out, s)
		}
	}
	return out
}
