package contracts

import (
	"context"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// Store is the logical operation set both backends implement for one
// collection. A Store instance is bound to a single entity, so key-based
// operations take the business key value only.
//
// Implementations translate their native failures to the domain sentinels:
// domain.ErrNotFound for missing records and domain.ErrDuplicateKey for
// uniqueness violations on insert.
type Store interface {
	// FindAll returns every record matching the filter.
	FindAll(ctx context.Context, f query.Filter) ([]domain.Record, error)

	// FindOne returns the single record matching the filter.
	FindOne(ctx context.Context, f query.Filter) (domain.Record, error)

	// Insert persists a new record and returns it as stored.
	Insert(ctx context.Context, rec domain.Record) (domain.Record, error)

	// Replace overwrites the record located by the filter with rec. The
	// filter carries the pre-update identity, so rec may rename the
	// business key and still land on the right document.
	Replace(ctx context.Context, f query.Filter, rec domain.Record) (domain.Record, error)

	// Delete physically removes the record with the given business key.
	Delete(ctx context.Context, key string) error

	// PatchFields sets individual fields on the record with the given
	// business key without touching the rest of the document. Bulk
	// operations use it as a fast path; it records no history.
	PatchFields(ctx context.Context, key string, fields map[string]any) error

	// Count returns how many records match the filter.
	Count(ctx context.Context, f query.Filter) (int64, error)
}

// BlobStore persists binary attachments by name and hands out read URLs.
type BlobStore interface {
	// Upload stores the content under the given blob name, replacing any
	// previous content, and returns the public URL.
	Upload(ctx context.Context, name string, content []byte, contentType string) (string, error)

	// Delete removes the blob.
	Delete(ctx context.Context, name string) error

	// ReadURL returns a short-lived signed read URL for the blob, or the
	// plain public URL when signing credentials are not configured.
	ReadURL(name string) (string, error)
}
