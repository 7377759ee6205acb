package repositories

import "github.com/vsinha/aerosim/pkg/domain/entities"

// PathwayRepository provides access to energy pathways and the resources and
// processes they share
type PathwayRepository interface {
	GetPathway(name string) (*entities.Pathway, error)
	GetAllPathways() ([]*entities.Pathway, error)
	GetPathwaysByCarrier(carrier entities.EnergyType) ([]*entities.Pathway, error)
	LoadPathways(pathways []*entities.Pathway) error

	GetResource(name string) (*entities.Resource, error)
	GetAllResources() ([]*entities.Resource, error)
	LoadResources(resources []*entities.Resource) error

	GetProcess(name string) (*entities.Process, error)
	GetAllProcesses() ([]*entities.Process, error)
	LoadProcesses(processes []*entities.Process) error
}
