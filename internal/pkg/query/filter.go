package query

import (
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"go.mongodb.org/mongo-driver/bson"
)

// Filter is an immutable conjunction of conditions that both storage
// adapters can translate to their native query shape. An empty filter
// matches everything.
type Filter struct {
	conditions []Condition
}

// Where creates a Filter from the given conditions, combined with AND logic.
func Where(conditions ...Condition) Filter {
	return Filter{conditions: conditions}
}

// And returns a new Filter with one more condition appended.
func (f Filter) And(c Condition) Filter {
	out := make([]Condition, 0, len(f.conditions)+1)
	out = append(out, f.conditions...)
	out = append(out, c)
	return Filter{conditions: out}
}

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return len(f.conditions) == 0
}

// Bson renders the filter as a BSON document for the document store.
func (f Filter) Bson() bson.M {
	out := bson.M{}
	for _, c := range f.conditions {
		field, value := c.Bson()
		out[field] = value
	}
	return out
}

// SQL renders the filter as a Cosmos SQL statement with parameters.
func (f Filter) SQL() (string, []azcosmos.QueryParameter) {
	var sql strings.Builder
	sql.WriteString("SELECT * FROM c")

	var params []azcosmos.QueryParameter
	if len(f.conditions) > 0 {
		sql.WriteString(" WHERE ")
		parts := make([]string, 0, len(f.conditions))
		paramIndex := 0
		for _, c := range f.conditions {
			fragment, condParams := c.SQL(paramIndex)
			parts = append(parts, fragment)
			params = append(params, condParams...)
			paramIndex += len(condParams)
		}
		sql.WriteString(strings.Join(parts, " AND "))
	}

	return sql.String(), params
}

// KeyEquality reports whether the filter is a single equality on the given
// field and returns the matched value. The partitioned adapter uses this to
// turn key lookups into point reads.
func (f Filter) KeyEquality(field string) (string, bool) {
	if len(f.conditions) != 1 {
		return "", false
	}
	eq, ok := f.conditions[0].(*eqCondition)
	if !ok || eq.field != field {
		return "", false
	}
	value, ok := eq.value.(string)
	return value, ok
}

// Equality returns the value of an equality condition on the given field,
// regardless of how many other conditions the filter carries. The
// partitioned adapter uses this to resolve the id of the item a filter
// addresses.
func (f Filter) Equality(field string) (string, bool) {
	for _, c := range f.conditions {
		eq, ok := c.(*eqCondition)
		if !ok || eq.field != field {
			continue
		}
		if value, ok := eq.value.(string); ok {
			return value, true
		}
	}
	return "", false
}
