package query

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"go.mongodb.org/mongo-driver/bson"
)

// Condition represents one predicate of a filter. Implementations must
// render themselves for both backends: a BSON fragment for the document
// store and a SQL fragment with named parameters for the partitioned
// store. paramIndex is used to generate unique parameter names
// (@p0, @p1, etc.).
type Condition interface {
	// Bson returns the field and match value for a BSON filter document.
	Bson() (string, any)

	// SQL returns the SQL fragment and its parameters.
	SQL(paramIndex int) (string, []azcosmos.QueryParameter)
}

// eqCondition implements equality comparison (field = value).
type eqCondition struct {
	field string
	value any
}

// Eq creates a condition for equality comparison.
// Example: Eq("SKUID", "X1") renders as {SKUID: "X1"} and "c.SKUID = @p0".
func Eq(field string, value any) Condition {
	return &eqCondition{field: field, value: value}
}

func (c *eqCondition) Bson() (string, any) {
	return c.field, c.value
}

func (c *eqCondition) SQL(paramIndex int) (string, []azcosmos.QueryParameter) {
	name := fmt.Sprintf("@p%d", paramIndex)
	sql := fmt.Sprintf("c.%s = %s", c.field, name)
	return sql, []azcosmos.QueryParameter{{Name: name, Value: c.value}}
}

// inCondition implements membership comparison (field IN values).
type inCondition struct {
	field  string
	values []string
}

// In creates a condition matching any of the given values.
func In(field string, values []string) Condition {
	return &inCondition{field: field, values: values}
}

func (c *inCondition) Bson() (string, any) {
	return c.field, bson.M{"$in": c.values}
}

func (c *inCondition) SQL(paramIndex int) (string, []azcosmos.QueryParameter) {
	name := fmt.Sprintf("@p%d", paramIndex)
	sql := fmt.Sprintf("ARRAY_CONTAINS(%s, c.%s)", name, c.field)
	return sql, []azcosmos.QueryParameter{{Name: name, Value: c.values}}
}
