package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/light-bringer/catalog-service/internal/app/catalog/contracts"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/models"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// cosmosInternalFields are the read-only bookkeeping properties Cosmos DB
// attaches to stored items. They are stripped on read and never persisted
// back.
var cosmosInternalFields = map[string]struct{}{
	"id": {}, "_rid": {}, "_self": {}, "_etag": {}, "_attachments": {}, "_ts": {},
}

// CosmosStore implements contracts.Store over a Cosmos DB container whose
// partition key path is the entity's business key: point operations address
// items with (id, partitionKey) both equal to the key.
//
// Updates are read-modify-replace without an etag precondition, so
// concurrent writers race last-writer-wins, matching the document backend.
type CosmosStore struct {
	container *azcosmos.ContainerClient
	entity    models.Entity
}

// NewCosmosStore binds a store to one entity's container.
func NewCosmosStore(db *azcosmos.DatabaseClient, entity models.Entity) (*CosmosStore, error) {
	container, err := db.NewContainer(entity.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", entity.Name, err)
	}
	return &CosmosStore{container: container, entity: entity}, nil
}

// EnsureContainer creates the entity's container if it does not exist yet,
// partitioned on the business key.
func EnsureContainer(ctx context.Context, db *azcosmos.DatabaseClient, entity models.Entity) error {
	_, err := db.CreateContainer(ctx, azcosmos.ContainerProperties{
		ID: entity.Name,
		PartitionKeyDefinition: azcosmos.PartitionKeyDefinition{
			Paths: []string{"/" + entity.KeyField},
		},
	}, nil)
	if err != nil && !isCosmosStatus(err, http.StatusConflict) {
		return fmt.Errorf("failed to create container %s: %w", entity.Name, err)
	}
	return nil
}

// FindAll returns every record matching the filter. With an empty partition
// key the query fans out across partitions.
func (s *CosmosStore) FindAll(ctx context.Context, f query.Filter) ([]domain.Record, error) {
	sql, params := f.SQL()
	pager := s.container.NewQueryItemsPager(sql, azcosmos.PartitionKey{}, &azcosmos.QueryOptions{
		QueryParameters: params,
	})

	var records []domain.Record
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", s.entity.Name, err)
		}
		for _, raw := range page.Items {
			rec, err := fromCosmosItem(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to decode %s item: %w", s.entity.Name, err)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// FindOne returns the single record matching the filter, using a point
// read when the filter is a plain business-key equality.
func (s *CosmosStore) FindOne(ctx context.Context, f query.Filter) (domain.Record, error) {
	if key, ok := f.KeyEquality(s.entity.KeyField); ok {
		res, err := s.container.ReadItem(ctx, azcosmos.NewPartitionKeyString(key), key, nil)
		if err != nil {
			if isCosmosStatus(err, http.StatusNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("failed to read %s/%s: %w", s.entity.Name, key, err)
		}
		return fromCosmosItem(res.Value)
	}

	records, err := s.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	return records[0], nil
}

// Insert persists a new item keyed and partitioned by the business key.
// A 409 from the backend surfaces as domain.ErrDuplicateKey.
func (s *CosmosStore) Insert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	key := rec.String(s.entity.KeyField)
	body, err := toCosmosItem(rec, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s item: %w", s.entity.Name, err)
	}

	if _, err := s.container.CreateItem(ctx, azcosmos.NewPartitionKeyString(key), body, nil); err != nil {
		if isCosmosStatus(err, http.StatusConflict) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to create %s/%s: %w", s.entity.Name, key, err)
	}
	return fromCosmosItem(body)
}

// Replace overwrites the whole item located by the filter. The item id and
// partition key both equal the business key, so a key rename cannot be an
// in-place replace: the old item is deleted and the record recreated under
// the new key.
func (s *CosmosStore) Replace(ctx context.Context, f query.Filter, rec domain.Record) (domain.Record, error) {
	newKey := rec.String(s.entity.KeyField)
	oldKey, ok := f.Equality(s.entity.KeyField)
	if !ok {
		oldKey = newKey
	}

	body, err := toCosmosItem(rec, newKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s item: %w", s.entity.Name, err)
	}

	if newKey != oldKey {
		if err := s.Delete(ctx, oldKey); err != nil {
			return nil, err
		}
		if _, err := s.container.CreateItem(ctx, azcosmos.NewPartitionKeyString(newKey), body, nil); err != nil {
			if isCosmosStatus(err, http.StatusConflict) {
				return nil, domain.ErrDuplicateKey
			}
			return nil, fmt.Errorf("failed to create %s/%s: %w", s.entity.Name, newKey, err)
		}
		return fromCosmosItem(body)
	}

	if _, err := s.container.ReplaceItem(ctx, azcosmos.NewPartitionKeyString(newKey), newKey, body, nil); err != nil {
		if isCosmosStatus(err, http.StatusNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to replace %s/%s: %w", s.entity.Name, newKey, err)
	}
	return fromCosmosItem(body)
}

// Delete physically removes the item with the given business key.
func (s *CosmosStore) Delete(ctx context.Context, key string) error {
	if _, err := s.container.DeleteItem(ctx, azcosmos.NewPartitionKeyString(key), key, nil); err != nil {
		if isCosmosStatus(err, http.StatusNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete %s/%s: %w", s.entity.Name, key, err)
	}
	return nil
}

// PatchFields sets individual fields with the native patch primitive. Bulk
// operations use this as a fast path; it bypasses the full-document audit
// flow, so bulk paths record less granular history than single-record
// operations (a known asymmetry of this system).
func (s *CosmosStore) PatchFields(ctx context.Context, key string, fields map[string]any) error {
	ops := azcosmos.PatchOperations{}
	for field, value := range fields {
		ops.AppendSet("/"+field, value)
	}

	if _, err := s.container.PatchItem(ctx, azcosmos.NewPartitionKeyString(key), key, ops, nil); err != nil {
		if isCosmosStatus(err, http.StatusNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to patch %s/%s: %w", s.entity.Name, key, err)
	}
	return nil
}

// Count returns how many items match the filter, fanning out across
// partitions.
func (s *CosmosStore) Count(ctx context.Context, f query.Filter) (int64, error) {
	sql, params := f.SQL()
	sql = strings.Replace(sql, "SELECT * FROM c", "SELECT VALUE COUNT(1) FROM c", 1)
	pager := s.container.NewQueryItemsPager(sql, azcosmos.PartitionKey{}, &azcosmos.QueryOptions{
		QueryParameters: params,
	})

	var total int64
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count %s: %w", s.entity.Name, err)
		}
		for _, raw := range page.Items {
			var n int64
			if err := json.Unmarshal(raw, &n); err != nil {
				return 0, fmt.Errorf("failed to decode %s count: %w", s.entity.Name, err)
			}
			total += n
		}
	}
	return total, nil
}

// toCosmosItem serializes a record with the mandatory id property set to
// the business key.
func toCosmosItem(rec domain.Record, key string) ([]byte, error) {
	body := rec.Clone()
	body["id"] = key
	return json.Marshal(body)
}

// fromCosmosItem decodes an item and strips Cosmos bookkeeping fields.
func fromCosmosItem(raw []byte) (domain.Record, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	rec := domain.Record{}
	for k, v := range doc {
		if _, internal := cosmosInternalFields[k]; internal {
			continue
		}
		rec[k] = v
	}
	return rec, nil
}

func isCosmosStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}

var _ contracts.Store = (*CosmosStore)(nil)
