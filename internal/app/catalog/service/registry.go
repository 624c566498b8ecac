package service

import (
	"fmt"

	"github.com/light-bringer/catalog-service/internal/app/catalog/contracts"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/models"
)

// Registry resolves the store serving an entity on a given backend. The
// orchestrators use it both for their own collection and for cross-entity
// existence checks, always against the backend selected by the request.
type Registry struct {
	entities map[string]models.Entity
	stores   map[string]map[domain.Backend]contracts.Store
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: map[string]models.Entity{},
		stores:   map[string]map[domain.Backend]contracts.Store{},
	}
}

// Register adds one entity's store for one backend.
func (r *Registry) Register(entity models.Entity, backend domain.Backend, store contracts.Store) {
	r.entities[entity.Name] = entity
	if r.stores[entity.Name] == nil {
		r.stores[entity.Name] = map[domain.Backend]contracts.Store{}
	}
	r.stores[entity.Name][backend] = store
}

// Store returns the store bound to the entity on the given backend.
func (r *Registry) Store(entityName string, backend domain.Backend) (contracts.Store, error) {
	store, ok := r.stores[entityName][backend]
	if !ok {
		return nil, fmt.Errorf("%w: no %s store for %s", domain.ErrUnsupportedBackend, backend, entityName)
	}
	return store, nil
}

// Entity returns the descriptor registered under the given name.
func (r *Registry) Entity(entityName string) (models.Entity, bool) {
	entity, ok := r.entities[entityName]
	return entity, ok
}
