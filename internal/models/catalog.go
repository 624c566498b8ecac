package models

import (
	"strings"
	"time"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

// Reference declares a logical foreign key validated at the orchestrator
// layer. The storage engines do not enforce it.
type Reference struct {
	Field    string // field on this record holding the foreign key value
	Entity   string // target collection name
	Optional bool   // skip the check when the field is empty
}

// Lookup declares an entity-specific read operation resolved by a field
// other than (or in addition to) the business key.
type Lookup struct {
	Op    string // operation selector, e.g. "GetBySKUID"
	Field string // field matched against the request key
	Many  bool   // true returns a list, false a single record

	// ExcludeDeleted hides logically deleted records from the lookup.
	// Like ListIncludesDeleted this is a per-entity convention, not a
	// global policy.
	ExcludeDeleted bool
}

// Entity describes one catalog collection: its name, business key,
// required fields, relationships, and business-rule validation. One
// generic orchestrator instance is built per descriptor.
type Entity struct {
	Name     string
	KeyField string
	Required []string

	// ListIncludesDeleted preserves the per-entity GetAll convention of
	// the source system: products, price lists, promotions, and files
	// list logically deleted records for traceability, categories and
	// the rest do not.
	ListIncludesDeleted bool

	References []Reference
	Lookups    []Lookup

	// Normalize coerces sub-payloads that arrive as JSON strings.
	// Runs before Validate. May be nil.
	Normalize func(domain.Record) error

	// Validate enforces entity business rules. May be nil.
	Validate func(domain.Record) error
}

// KeyParam is the request parameter carrying the business key,
// e.g. "skuid" for SKUID.
func (e Entity) KeyParam() string {
	return strings.ToLower(e.KeyField)
}

// MissingRequired returns the required fields absent or empty in the
// payload, in declaration order.
func (e Entity) MissingRequired(payload domain.Record) []string {
	var missing []string
	for _, field := range e.Required {
		v, ok := payload[field]
		if !ok || v == nil || v == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// All returns every entity descriptor of the catalog.
func All() []Entity {
	return []Entity{
		Product(),
		Presentation(),
		PriceList(),
		PriceItem(),
		Category(),
		Promotion(),
		File(),
	}
}

// parseDate accepts the date shapes a record can carry: native timestamps
// from the document driver and RFC 3339 or date-only strings from JSON.
func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// asNumber mirrors the numeric shapes produced by JSON and BSON decoding.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
