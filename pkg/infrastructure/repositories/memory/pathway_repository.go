package memory

import (
	"fmt"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/domain/repositories"
)

// PathwayRepository provides in-memory pathway, resource and process storage.
// Registration order is preserved so scenarios build deterministically.
type PathwayRepository struct {
	pathways     []entities.Pathway
	pathwaysMap  map[string]int
	resources    []entities.Resource
	resourcesMap map[string]int
	processes    []entities.Process
	processesMap map[string]int
}

// NewPathwayRepository creates a new in-memory pathway repository
func NewPathwayRepository(expectedPathways int) *PathwayRepository {
	return &PathwayRepository{
		pathways:     make([]entities.Pathway, 0, expectedPathways),
		pathwaysMap:  make(map[string]int, expectedPathways),
		resourcesMap: make(map[string]int),
		processesMap: make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.PathwayRepository = (*PathwayRepository)(nil)

// LoadPathways loads pathways into the repository
func (r *PathwayRepository) LoadPathways(pathways []*entities.Pathway) error {
	for _, p := range pathways {
		if _, exists := r.pathwaysMap[p.Name]; exists {
			return fmt.Errorf("duplicate pathway: %s", p.Name)
		}
		r.pathwaysMap[p.Name] = len(r.pathways)
		r.pathways = append(r.pathways, *p)
	}
	return nil
}

// GetPathway returns a pathway by name
func (r *PathwayRepository) GetPathway(name string) (*entities.Pathway, error) {
	index, exists := r.pathwaysMap[name]
	if !exists {
		return nil, fmt.Errorf("pathway not found: %s", name)
	}
	return &r.pathways[index], nil
}

// GetAllPathways returns all pathways in registration order
func (r *PathwayRepository) GetAllPathways() ([]*entities.Pathway, error) {
	pathways := make([]*entities.Pathway, 0, len(r.pathways))
	for i := range r.pathways {
		pathways = append(pathways, &r.pathways[i])
	}
	return pathways, nil
}

// GetPathwaysByCarrier returns the pathways producing the given carrier
func (r *PathwayRepository) GetPathwaysByCarrier(carrier entities.EnergyType) ([]*entities.Pathway, error) {
	var pathways []*entities.Pathway
	for i := range r.pathways {
		if r.pathways[i].Carrier == carrier {
			pathways = append(pathways, &r.pathways[i])
		}
	}
	return pathways, nil
}

// LoadResources loads shared resources into the repository
func (r *PathwayRepository) LoadResources(resources []*entities.Resource) error {
	for _, res := range resources {
		if _, exists := r.resourcesMap[res.Name]; exists {
			return fmt.Errorf("duplicate resource: %s", res.Name)
		}
		r.resourcesMap[res.Name] = len(r.resources)
		r.resources = append(r.resources, *res)
	}
	return nil
}

// GetResource returns a resource by name
func (r *PathwayRepository) GetResource(name string) (*entities.Resource, error) {
	index, exists := r.resourcesMap[name]
	if !exists {
		return nil, fmt.Errorf("resource not found: %s", name)
	}
	return &r.resources[index], nil
}

// GetAllResources returns all resources in registration order
func (r *PathwayRepository) GetAllResources() ([]*entities.Resource, error) {
	resources := make([]*entities.Resource, 0, len(r.resources))
	for i := range r.resources {
		resources = append(resources, &r.resources[i])
	}
	return resources, nil
}

// LoadProcesses loads processes into the repository
func (r *PathwayRepository) LoadProcesses(processes []*entities.Process) error {
	for _, proc := range processes {
		if _, exists := r.processesMap[proc.Name]; exists {
			return fmt.Errorf("duplicate process: %s", proc.Name)
		}
		r.processesMap[proc.Name] = len(r.processes)
		r.processes = append(r.processes, *proc)
	}
	return nil
}

// GetProcess returns a process by name
func (r *PathwayRepository) GetProcess(name string) (*entities.Process, error) {
	index, exists := r.processesMap[name]
	if !exists {
		return nil, fmt.Errorf("process not found: %s", name)
	}
	return &r.processes[index], nil
}

// GetAllProcesses returns all processes in registration order
func (r *PathwayRepository) GetAllProcesses() ([]*entities.Process, error) {
	processes := make([]*entities.Process, 0, len(r.processes))
	for i := range r.processes {
		processes = append(processes, &r.processes[i])
	}
	return processes, nil
}
