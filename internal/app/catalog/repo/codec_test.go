package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
)

func TestFromBsonDoc(t *testing.T) {
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("strips _id and normalizes container types", func(t *testing.T) {
		rec := fromBsonDoc(bson.M{
			"_id":     primitive.NewObjectID(),
			"SKUID":   "SKU-001",
			"REGDATE": primitive.NewDateTimeFromTime(stamp),
			"INFOAD":  bson.M{"color": "red"},
			"HISTORY": bson.A{bson.D{{Key: "user", Value: "alice"}, {Key: "action", Value: "CREATE"}}},
		})

		assert.NotContains(t, rec, "_id")
		assert.Equal(t, "SKU-001", rec["SKUID"])
		assert.Equal(t, stamp, rec["REGDATE"])
		assert.Equal(t, map[string]any{"color": "red"}, rec["INFOAD"])

		history := rec.History()
		require.Len(t, history, 1)
		assert.Equal(t, map[string]any{"user": "alice", "action": "CREATE"}, history[0])
	})

	t.Run("object ids become hex strings", func(t *testing.T) {
		oid := primitive.NewObjectID()
		rec := fromBsonDoc(bson.M{"REF": oid})
		assert.Equal(t, oid.Hex(), rec["REF"])
	})
}

func TestCosmosItemRoundTrip(t *testing.T) {
	t.Run("id is injected on write and stripped on read", func(t *testing.T) {
		raw, err := toCosmosItem(domain.Record{"SKUID": "SKU-001", "DESSKU": "Laptop"}, "SKU-001")
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"id":"SKU-001"`)

		rec, err := fromCosmosItem(raw)
		require.NoError(t, err)
		assert.NotContains(t, rec, "id")
		assert.Equal(t, "SKU-001", rec["SKUID"])
	})

	t.Run("bookkeeping fields are stripped on read", func(t *testing.T) {
		rec, err := fromCosmosItem([]byte(`{"SKUID":"X","_rid":"r","_etag":"e","_ts":123,"_self":"s","_attachments":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.Record{"SKUID": "X"}, rec)
	})
}
