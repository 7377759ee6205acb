package memory

import (
	"fmt"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/domain/repositories"
)

// FleetRepository provides in-memory storage for aircraft categories
type FleetRepository struct {
	categories    []entities.Category
	categoriesMap map[string]int
}

// NewFleetRepository creates a new in-memory fleet repository
func NewFleetRepository(expectedCategories int) *FleetRepository {
	return &FleetRepository{
		categories:    make([]entities.Category, 0, expectedCategories),
		categoriesMap: make(map[string]int, expectedCategories),
	}
}

// Verify interface compliance
var _ repositories.FleetRepository = (*FleetRepository)(nil)

// LoadCategories validates and loads categories into the repository
func (r *FleetRepository) LoadCategories(categories []*entities.Category) error {
	for _, c := range categories {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, exists := r.categoriesMap[c.Name]; exists {
			return fmt.Errorf("duplicate category: %s", c.Name)
		}
		r.categoriesMap[c.Name] = len(r.categories)
		r.categories = append(r.categories, *c)
	}
	return nil
}

// GetCategory returns a category by name
func (r *FleetRepository) GetCategory(name string) (*entities.Category, error) {
	index, exists := r.categoriesMap[name]
	if !exists {
		return nil, fmt.Errorf("category not found: %s", name)
	}
	return &r.categories[index], nil
}

// GetAllCategories returns all categories in registration order
func (r *FleetRepository) GetAllCategories() ([]*entities.Category, error) {
	categories := make([]*entities.Category, 0, len(r.categories))
	for i := range r.categories {
		categories = append(categories, &r.categories[i])
	}
	return categories, nil
}
