package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/light-bringer/catalog-service/internal/app/catalog/contracts"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

func (s *Service) store(backend domain.Backend) (contracts.Store, error) {
	return s.registry.Store(s.entity.Name, backend)
}

// GetAll lists the entity's records. Whether logically deleted records are
// included follows the per-entity convention of the descriptor.
func (s *Service) GetAll(ctx context.Context, backend domain.Backend) ([]domain.Record, error) {
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}

	filter := query.Where()
	if !s.entity.ListIncludesDeleted {
		filter = filter.And(query.Eq(domain.FieldDeleted, false))
	}
	return store.FindAll(ctx, filter)
}

// GetOne returns the live record with the given business key; a record
// that exists but is not live is reported as not found.
func (s *Service) GetOne(ctx context.Context, backend domain.Backend, key string) (domain.Record, error) {
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}
	return store.FindOne(ctx, query.Where(
		query.Eq(s.entity.KeyField, key),
		query.Eq(domain.FieldActived, true),
		query.Eq(domain.FieldDeleted, false),
	))
}

// GetOneBy returns the single record whose field matches the value.
func (s *Service) GetOneBy(ctx context.Context, backend domain.Backend, field, value string) (domain.Record, error) {
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}
	return store.FindOne(ctx, query.Where(query.Eq(field, value)))
}

// GetManyBy returns every record whose field matches the value.
func (s *Service) GetManyBy(ctx context.Context, backend domain.Backend, field, value string) ([]domain.Record, error) {
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}
	return store.FindAll(ctx, query.Where(query.Eq(field, value)))
}

// resolveLookup runs a declared per-entity lookup, applying its lifecycle
// convention.
func (s *Service) resolveLookup(ctx context.Context, backend domain.Backend, lookup models.Lookup, value string) (any, error) {
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}

	filter := query.Where(query.Eq(lookup.Field, value))
	if lookup.ExcludeDeleted {
		filter = filter.And(query.Eq(domain.FieldDeleted, false))
	}
	if lookup.Many {
		return store.FindAll(ctx, filter)
	}
	return store.FindOne(ctx, filter)
}

// AddOne creates a new record after the full pre-flight sequence:
// required-field presence, payload normalization, business-rule
// validation, uniqueness pre-check on the business key, and cross-entity
// existence checks. Only then does the audit writer persist it.
func (s *Service) AddOne(ctx context.Context, backend domain.Backend, payload domain.Record, user string) (domain.Record, error) {
	if len(payload) == 0 {
		return nil, domain.Validationf("no payload received; check Content-Type: application/json")
	}

	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}

	payload = payload.Clone()
	if missing := s.entity.MissingRequired(payload); len(missing) > 0 {
		return nil, domain.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if s.entity.Normalize != nil {
		if err := s.entity.Normalize(payload); err != nil {
			return nil, err
		}
	}
	if s.entity.Validate != nil {
		if err := s.entity.Validate(payload); err != nil {
			return nil, err
		}
	}

	key := payload.String(s.entity.KeyField)
	if err := s.checkKeyFree(ctx, store, key); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, backend, payload); err != nil {
		return nil, err
	}

	return s.audit.Save(ctx, store, query.Where(), payload, user, domain.ActionCreate)
}

// UpdateOne applies a partial update. When the business key itself is
// being changed, the new key must be free. Entity validation runs against
// a preview of the merged record so partial payloads cannot dodge
// business rules.
func (s *Service) UpdateOne(ctx context.Context, backend domain.Backend, key string, changes domain.Record, user string) (domain.Record, error) {
	if len(changes) == 0 {
		return nil, domain.Validationf("no fields to update")
	}

	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}

	changes = changes.Clone()
	if s.entity.Normalize != nil {
		if err := s.entity.Normalize(changes); err != nil {
			return nil, err
		}
	}

	if newKey := changes.String(s.entity.KeyField); newKey != "" && newKey != key {
		if err := s.checkKeyFree(ctx, store, newKey); err != nil {
			return nil, err
		}
	}

	if s.entity.Validate != nil {
		existing, err := store.FindOne(ctx, query.Where(query.Eq(s.entity.KeyField, key)))
		if err != nil {
			return nil, err
		}
		preview := existing.Clone()
		for field, value := range changes {
			preview[field] = value
		}
		if err := s.entity.Validate(preview); err != nil {
			return nil, err
		}
	}

	return s.audit.Save(ctx, store, query.Where(query.Eq(s.entity.KeyField, key)), changes, user, domain.ActionUpdate)
}

// DeleteLogic flips a live record to the logically deleted state. The
// filter requires the record to be live, so deleting twice reports not
// found, and the flip goes through the audit writer like any update.
func (s *Service) DeleteLogic(ctx context.Context, backend domain.Backend, key, user string) (domain.Record, error) {
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}

	filter := query.Where(
		query.Eq(s.entity.KeyField, key),
		query.Eq(domain.FieldActived, true),
		query.Eq(domain.FieldDeleted, false),
	)
	data := domain.Record{domain.FieldActived: false, domain.FieldDeleted: true}
	return s.audit.Save(ctx, store, filter, data, user, domain.ActionUpdate)
}

// ActivateOne restores a record to the live state.
func (s *Service) ActivateOne(ctx context.Context, backend domain.Backend, key, user string) (domain.Record, error) {
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}

	filter := query.Where(query.Eq(s.entity.KeyField, key))
	data := domain.Record{domain.FieldActived: true, domain.FieldDeleted: false}
	return s.audit.Save(ctx, store, filter, data, user, domain.ActionUpdate)
}

// DeleteHard physically removes the record, bypassing the audit writer:
// no history trace of the record remains.
func (s *Service) DeleteHard(ctx context.Context, backend domain.Backend, key string) (domain.Record, error) {
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}
	if err := store.Delete(ctx, key); err != nil {
		return nil, err
	}
	return domain.Record{
		s.entity.KeyField: key,
		"message":         "record permanently removed",
	}, nil
}

// checkKeyFree is the application-layer uniqueness pre-check. The document
// backend also enforces a unique index, but the partitioned backend has no
// secondary-uniqueness guarantee, so both paths pre-check the same way.
func (s *Service) checkKeyFree(ctx context.Context, store contracts.Store, key string) error {
	n, err := store.Count(ctx, query.Where(query.Eq(s.entity.KeyField, key)))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s %q", domain.ErrDuplicateKey, s.entity.KeyField, key)
	}
	return nil
}

// checkReferences verifies the declared logical foreign keys exist on the
// same backend the record is being written to.
func (s *Service) checkReferences(ctx context.Context, backend domain.Backend, payload domain.Record) error {
	for _, ref := range s.entity.References {
		value := payload.String(ref.Field)
		if value == "" {
			if ref.Optional {
				continue
			}
			return domain.Validationf("missing required reference field: %s", ref.Field)
		}

		target, ok := s.registry.Entity(ref.Entity)
		if !ok {
			return fmt.Errorf("unknown referenced entity %s", ref.Entity)
		}
		refStore, err := s.registry.Store(ref.Entity, backend)
		if err != nil {
			return err
		}
		_, err = refStore.FindOne(ctx, query.Where(query.Eq(target.KeyField, value)))
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validationf("referenced %s %q does not exist", ref.Entity, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
