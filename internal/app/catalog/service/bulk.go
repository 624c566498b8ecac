package service

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// BulkResult summarizes a best-effort bulk operation. Every key is
// attempted; failures are collected instead of aborting the batch, so a
// successful response can still carry per-key errors.
type BulkResult struct {
	SuccessCount int             `json:"successCount"`
	FailedCount  int             `json:"failedCount"`
	Results      []domain.Record `json:"results"`
	Errors       []BulkError     `json:"errors,omitempty"`
}

// BulkError reports why one key of a batch failed.
type BulkError struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// ActivateMany flips every given record to the live state via the
// patch fast path. Bulk patches record no history entries.
func (s *Service) ActivateMany(ctx context.Context, backend domain.Backend, keys []string, user string) (*BulkResult, error) {
	return s.patchMany(ctx, backend, keys, user, domain.Record{
		domain.FieldActived: true,
		domain.FieldDeleted: false,
	}, "activated")
}

// DeactivateMany logically deletes every given record via the patch
// fast path. Bulk patches record no history entries.
func (s *Service) DeactivateMany(ctx context.Context, backend domain.Backend, keys []string, user string) (*BulkResult, error) {
	return s.patchMany(ctx, backend, keys, user, domain.Record{
		domain.FieldActived: false,
		domain.FieldDeleted: true,
	}, "deactivated")
}

// DeleteHardMany physically removes every given record, best effort.
func (s *Service) DeleteHardMany(ctx context.Context, backend domain.Backend, keys []string) (*BulkResult, error) {
	if len(keys) == 0 {
		return nil, domain.Validationf("no keys received for bulk operation")
	}
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{}
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, BulkError{Key: key, Reason: err.Error()})
			continue
		}
		result.SuccessCount++
		result.Results = append(result.Results, domain.Record{
			s.entity.KeyField: key,
			"message":         "record permanently removed",
		})
	}
	return result, nil
}

func (s *Service) patchMany(ctx context.Context, backend domain.Backend, keys []string, user string, flags domain.Record, verb string) (*BulkResult, error) {
	if len(keys) == 0 {
		return nil, domain.Validationf("no keys received for bulk operation")
	}
	store, err := s.store(backend)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	result := &BulkResult{}
	for _, key := range keys {
		fields := flags.Clone()
		fields[domain.FieldModUser] = user
		fields[domain.FieldModDate] = now
		if err := store.PatchFields(ctx, key, fields); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, BulkError{Key: key, Reason: err.Error()})
			continue
		}
		result.SuccessCount++
		result.Results = append(result.Results, domain.Record{
			s.entity.KeyField: key,
			"message":         fmt.Sprintf("record %s", verb),
		})
	}
	return result, nil
}
