package scenario

import (
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vsinha/aerosim/pkg/application/services/disciplines"
	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/domain/repositories"
	"github.com/vsinha/aerosim/pkg/domain/services"
)

// ErrUnknownBaseline is returned when the requested baseline pathway does not exist
var ErrUnknownBaseline = errors.New("baseline pathway not found")

// Options selects how a scenario is assembled
type Options struct {
	TimeIndex entities.TimeIndex
	// PriceElasticity closes the airfare → traffic feedback loop
	PriceElasticity bool
	// Baseline names the pathway costs and abatement are compared against.
	// Empty selects the default drop-in pathway.
	Baseline string
	// MDA holds the orchestrator settings
	MDA mda.Config
}

// Builder instantiates the disciplines of a scenario from its repositories
type Builder struct {
	pathwayRepo repositories.PathwayRepository
	fleetRepo   repositories.FleetRepository
	paramRepo   repositories.ParameterRepository
	validator   *services.ScenarioValidator
	logger      log.Logger
}

// NewBuilder creates a new scenario builder
func NewBuilder(
	pathwayRepo repositories.PathwayRepository,
	fleetRepo repositories.FleetRepository,
	paramRepo repositories.ParameterRepository,
	logger log.Logger,
) *Builder {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Builder{
		pathwayRepo: pathwayRepo,
		fleetRepo:   fleetRepo,
		paramRepo:   paramRepo,
		validator:   services.NewScenarioValidator(),
		logger:      logger,
	}
}

// Build validates the scenario definition and registers one discipline per
// model component: traffic, one fleet per category, non-CO2, one mix and
// one carrier aggregation per carrier, one top-down or bottom-up discipline
// per pathway, resource balance, scenario costs and airfare
func (b *Builder) Build(opts Options) (*Process, error) {
	ti := opts.TimeIndex
	if err := ti.Validate(); err != nil {
		return nil, err
	}

	def, err := b.loadDefinition()
	if err != nil {
		return nil, err
	}
	if err := b.validator.ValidateScenario(def).Err(); err != nil {
		return nil, err
	}

	baseline, err := b.baseline(def.Pathways, opts.Baseline)
	if err != nil {
		return nil, err
	}

	if opts.MDA.Logger == nil {
		opts.MDA.Logger = b.logger
	}
	orchestrator := mda.NewOrchestrator(opts.MDA)
	process := &Process{
		orchestrator: orchestrator,
		paramRepo:    b.paramRepo,
		timeIndex:    ti,
		bottomUp:     make(map[string]*disciplines.BottomUpPathway),
		logger:       b.logger,
	}

	register := func(d mda.Discipline) error {
		if err := orchestrator.Register(d); err != nil {
			return fmt.Errorf("failed to register %s: %w", d.Descriptor().Name, err)
		}
		return nil
	}

	// Step 1: traffic and fleet
	if err := register(disciplines.NewTrafficDiscipline(ti, opts.PriceElasticity)); err != nil {
		return nil, err
	}
	categoryNames := make([]string, 0, len(def.Categories))
	for _, category := range def.Categories {
		fleet, err := disciplines.NewFleetDiscipline(ti, *category)
		if err != nil {
			return nil, err
		}
		if err := register(fleet); err != nil {
			return nil, err
		}
		categoryNames = append(categoryNames, category.Name)
	}
	if len(categoryNames) > 0 {
		if err := register(disciplines.NewNonCO2Discipline(ti, categoryNames)); err != nil {
			return nil, err
		}
	}

	// Step 2: energy mix and carrier aggregation
	for _, carrier := range entities.EnergyTypes {
		pathways := byCarrier(def.Pathways, carrier)
		if len(pathways) == 0 {
			continue
		}
		mix, err := disciplines.NewMixDiscipline(ti, carrier, pathways, b.logger, opts.MDA.Events)
		if err != nil {
			return nil, err
		}
		if err := register(mix); err != nil {
			return nil, err
		}
		carrierAgg, err := disciplines.NewCarrierDiscipline(ti, carrier, pathways)
		if err != nil {
			return nil, err
		}
		if err := register(carrierAgg); err != nil {
			return nil, err
		}
	}

	// Step 3: pathways
	resources := make([]string, 0)
	seenResource := make(map[string]bool)
	for _, p := range def.Pathways {
		d, err := b.pathwayDiscipline(ti, p, baseline)
		if err != nil {
			return nil, err
		}
		if bu, ok := d.(*disciplines.BottomUpPathway); ok {
			process.bottomUp[p.Name] = bu
			for _, r := range p.Resources {
				if !seenResource[r] && b.paramRepo.Has(disciplines.ResourceAvailability(r)) {
					seenResource[r] = true
					resources = append(resources, r)
				}
			}
		}
		if err := register(d); err != nil {
			return nil, err
		}
	}
	if len(resources) > 0 {
		if err := register(disciplines.NewResourceBalance(ti, resources, b.logger)); err != nil {
			return nil, err
		}
	}

	// Step 4: economics
	process.costs = disciplines.NewScenarioCostsDiscipline(ti, def.Pathways, baseline)
	if err := register(process.costs); err != nil {
		return nil, err
	}
	if err := register(disciplines.NewAirfareDiscipline(ti)); err != nil {
		return nil, err
	}

	level.Debug(b.logger).Log(
		"msg", "scenario assembled",
		"disciplines", len(orchestrator.Disciplines()),
		"pathways", len(def.Pathways),
		"categories", len(def.Categories),
		"baseline", baseline.Name,
	)
	return process, nil
}

// pathwayDiscipline is the factory selecting the model of a pathway
func (b *Builder) pathwayDiscipline(ti entities.TimeIndex, p, baseline *entities.Pathway) (mda.Discipline, error) {
	switch p.Model {
	case entities.TopDown:
		return disciplines.NewTopDownPathway(p), nil
	case entities.BottomUp:
		return disciplines.NewBottomUpPathway(ti, p, disciplines.BottomUpOptions{
			Reference:    baseline,
			HistoricRamp: b.paramRepo.Has(p.Var(disciplines.IntroductionYearField)),
		})
	default:
		return nil, fmt.Errorf("pathway %s has unknown model %s", p.Name, p.Model)
	}
}

func (b *Builder) loadDefinition() (services.ScenarioDefinition, error) {
	pathways, err := b.pathwayRepo.GetAllPathways()
	if err != nil {
		return services.ScenarioDefinition{}, fmt.Errorf("failed to load pathways: %w", err)
	}
	resources, err := b.pathwayRepo.GetAllResources()
	if err != nil {
		return services.ScenarioDefinition{}, fmt.Errorf("failed to load resources: %w", err)
	}
	processes, err := b.pathwayRepo.GetAllProcesses()
	if err != nil {
		return services.ScenarioDefinition{}, fmt.Errorf("failed to load processes: %w", err)
	}
	categories, err := b.fleetRepo.GetAllCategories()
	if err != nil {
		return services.ScenarioDefinition{}, fmt.Errorf("failed to load fleet: %w", err)
	}
	if len(pathways) == 0 {
		return services.ScenarioDefinition{}, fmt.Errorf("scenario defines no pathways")
	}
	return services.ScenarioDefinition{
		Pathways:   pathways,
		Resources:  resources,
		Processes:  processes,
		Categories: categories,
	}, nil
}

// baseline resolves the reference pathway; it must be top-down so that
// bottom-up pathways can depend on it without closing a loop
func (b *Builder) baseline(pathways []*entities.Pathway, name string) (*entities.Pathway, error) {
	for _, p := range pathways {
		if name == "" && p.Default && p.Carrier == entities.DropInFuel {
			name = p.Name
		}
		if p.Name == name {
			if p.Model != entities.TopDown {
				return nil, fmt.Errorf("baseline pathway %s must be top-down", name)
			}
			return p, nil
		}
	}
	if name == "" {
		return nil, fmt.Errorf("no default drop-in pathway to use as baseline")
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBaseline, name)
}

func byCarrier(pathways []*entities.Pathway, carrier entities.EnergyType) []*entities.Pathway {
	out := make([]*entities.Pathway, 0)
	for _, p := range pathways {
		if p.Carrier == carrier {
			out = append(out, p)
		}
	}
	return out
}
