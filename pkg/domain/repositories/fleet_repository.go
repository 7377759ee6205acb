package repositories

import "github.com/vsinha/aerosim/pkg/domain/entities"

// FleetRepository provides access to the aircraft category hierarchy
type FleetRepository interface {
	GetCategory(name string) (*entities.Category, error)
	GetAllCategories() ([]*entities.Category, error)
	LoadCategories(categories []*entities.Category) error
}
