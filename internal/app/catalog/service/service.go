// Package service implements the entity CRUD orchestrators: one generic
// orchestrator instantiated per entity descriptor, composing the audit
// writer with the backend adapter selected per request, behind a uniform
// envelope-producing dispatch contract.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/light-bringer/catalog-service/internal/app/catalog/audit"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
	"github.com/light-bringer/catalog-service/internal/pkg/envelope"
)

// Operation selectors shared by every entity.
const (
	OpGetAll         = "GetAll"
	OpGetOne         = "GetOne"
	OpAddOne         = "AddOne"
	OpUpdateOne      = "UpdateOne"
	OpDeleteLogic    = "DeleteLogic"
	OpDeleteHard     = "DeleteHard"
	OpActivateOne    = "ActivateOne"
	OpActivateMany   = "ActivateMany"
	OpDeactivateMany = "DeactivateMany"
	OpDeleteHardMany = "DeleteHardMany"
)

// Request carries the pre-parsed parameters of one orchestrator call.
type Request struct {
	ProcessType string
	LoggedUser  string
	DBServer    string
	Key         string
	Keys        []string
	Payload     domain.Record
}

// Service orchestrates one entity's CRUD operations over both backends.
type Service struct {
	entity   models.Entity
	registry *Registry
	audit    *audit.Writer
	clock    clock.Clock
	logger   *slog.Logger
}

// NewService creates the orchestrator for one entity.
func NewService(entity models.Entity, registry *Registry, writer *audit.Writer, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		entity:   entity,
		registry: registry,
		audit:    writer,
		clock:    clk,
		logger:   logger.With(slog.String("entity", entity.Name)),
	}
}

// Entity returns the descriptor this orchestrator serves.
func (s *Service) Entity() models.Entity {
	return s.entity
}

// Handle validates the mandatory parameters, dispatches the operation on
// the selected backend, and translates the outcome into an envelope.
// No error escapes: every failure becomes an envelope with the status the
// error taxonomy assigns.
func (s *Service) Handle(ctx context.Context, req Request) *envelope.Bitacora {
	b := envelope.New()
	b.ProcessType = req.ProcessType
	b.LoggedUser = req.LoggedUser

	if req.ProcessType == "" {
		return b.Fail("parameter validation", http.StatusBadRequest,
			"missing required parameter: ProcessType",
			"ProcessType is required; valid values: GetAll, GetOne, AddOne, UpdateOne, DeleteLogic, DeleteHard, ActivateOne")
	}
	if req.LoggedUser == "" {
		return b.Fail("parameter validation", http.StatusBadRequest,
			"missing required parameter: LoggedUser",
			"LoggedUser is required for audit traceability")
	}

	backend, err := domain.ParseBackend(req.DBServer)
	if err != nil {
		return b.FailErr("backend selection", err)
	}
	b.DBServer = string(backend)

	process := fmt.Sprintf("%s %s", req.ProcessType, s.entity.Name)
	result, err := s.dispatch(ctx, backend, req)
	if err != nil {
		s.logger.Warn("operation failed",
			slog.String("op", req.ProcessType),
			slog.String("backend", string(backend)),
			slog.String("error", err.Error()))
		return b.FailErr(process, err)
	}

	s.logger.Info("operation completed",
		slog.String("op", req.ProcessType),
		slog.String("backend", string(backend)),
		slog.String("user", req.LoggedUser))
	return b.OK(process, "operation completed successfully", result)
}

func (s *Service) dispatch(ctx context.Context, backend domain.Backend, req Request) (any, error) {
	switch req.ProcessType {
	case OpGetAll:
		return s.GetAll(ctx, backend)

	case OpGetOne:
		if err := s.requireKey(req.Key); err != nil {
			return nil, err
		}
		return s.GetOne(ctx, backend, req.Key)

	case OpAddOne:
		return s.AddOne(ctx, backend, req.Payload, req.LoggedUser)

	case OpUpdateOne:
		if err := s.requireKey(req.Key); err != nil {
			return nil, err
		}
		return s.UpdateOne(ctx, backend, req.Key, req.Payload, req.LoggedUser)

	case OpDeleteLogic:
		if err := s.requireKey(req.Key); err != nil {
			return nil, err
		}
		return s.DeleteLogic(ctx, backend, req.Key, req.LoggedUser)

	case OpDeleteHard:
		if err := s.requireKey(req.Key); err != nil {
			return nil, err
		}
		return s.DeleteHard(ctx, backend, req.Key)

	case OpActivateOne:
		if err := s.requireKey(req.Key); err != nil {
			return nil, err
		}
		return s.ActivateOne(ctx, backend, req.Key, req.LoggedUser)

	case OpActivateMany:
		return s.ActivateMany(ctx, backend, req.Keys, req.LoggedUser)

	case OpDeactivateMany:
		return s.DeactivateMany(ctx, backend, req.Keys, req.LoggedUser)

	case OpDeleteHardMany:
		return s.DeleteHardMany(ctx, backend, req.Keys)

	default:
		for _, lookup := range s.entity.Lookups {
			if lookup.Op != req.ProcessType {
				continue
			}
			if err := s.requireKey(req.Key); err != nil {
				return nil, err
			}
			return s.resolveLookup(ctx, backend, lookup, req.Key)
		}
		return nil, domain.Validationf("unsupported ProcessType %q for %s", req.ProcessType, s.entity.Name)
	}
}

func (s *Service) requireKey(key string) error {
	if key == "" {
		return domain.Validationf("missing required parameter: %s", s.entity.KeyParam())
	}
	return nil
}
