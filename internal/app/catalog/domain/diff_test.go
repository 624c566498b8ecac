package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiff_Create(t *testing.T) {
	t.Run("nil prior returns full snapshot", func(t *testing.T) {
		proposed := Record{
			"SKUID":   "SKU-001",
			"DESSKU":  "Laptop",
			"ACTIVED": true,
			"DELETED": false,
		}
		diff := ComputeDiff(nil, proposed)
		assert.Equal(t, Record{
			"SKUID":   "SKU-001",
			"DESSKU":  "Laptop",
			"ACTIVED": true,
			"DELETED": false,
		}, diff)
	})

	t.Run("excluded fields never appear in snapshot", func(t *testing.T) {
		proposed := Record{
			"SKUID":   "SKU-001",
			"HISTORY": []any{},
			"MODUSER": "someone",
			"MODDATE": time.Now(),
			"_id":     "abc",
			"_etag":   "xyz",
		}
		diff := ComputeDiff(nil, proposed)
		assert.Equal(t, Record{"SKUID": "SKU-001"}, diff)
	})
}

func TestComputeDiff_Update(t *testing.T) {
	prior := Record{
		"SKUID":  "SKU-001",
		"DESSKU": "Laptop",
		"MARCA":  "Acme",
	}

	t.Run("only changed fields appear", func(t *testing.T) {
		diff := ComputeDiff(prior, Record{"DESSKU": "Laptop Pro", "MARCA": "Acme"})
		assert.Equal(t, Record{"DESSKU": "Laptop Pro"}, diff)
	})

	t.Run("identical payload yields empty diff", func(t *testing.T) {
		diff := ComputeDiff(prior, Record{"DESSKU": "Laptop", "MARCA": "Acme"})
		assert.Empty(t, diff)
	})

	t.Run("field absent from prior counts as change", func(t *testing.T) {
		diff := ComputeDiff(prior, Record{"BARCODE": "750123"})
		assert.Equal(t, Record{"BARCODE": "750123"}, diff)
	})

	t.Run("does not mutate inputs", func(t *testing.T) {
		proposed := Record{"DESSKU": "Changed"}
		_ = ComputeDiff(prior, proposed)
		assert.Equal(t, "Laptop", prior["DESSKU"])
		assert.Equal(t, Record{"DESSKU": "Changed"}, proposed)
	})
}

func TestComputeDiff_ValueEquality(t *testing.T) {
	t.Run("numeric types compare by magnitude", func(t *testing.T) {
		prior := Record{"Precio": int32(100)}
		assert.Empty(t, ComputeDiff(prior, Record{"Precio": float64(100)}))
		assert.Empty(t, ComputeDiff(prior, Record{"Precio": int64(100)}))
		assert.NotEmpty(t, ComputeDiff(prior, Record{"Precio": float64(100.5)}))
	})

	t.Run("time values compare against RFC3339 strings", func(t *testing.T) {
		stamp := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
		prior := Record{"FECHAEXPIRAINI": stamp}
		assert.Empty(t, ComputeDiff(prior, Record{"FECHAEXPIRAINI": "2026-03-15T10:30:00Z"}))
		assert.NotEmpty(t, ComputeDiff(prior, Record{"FECHAEXPIRAINI": "2026-03-16T10:30:00Z"}))
	})

	t.Run("slices compare element-wise", func(t *testing.T) {
		prior := Record{"CATEGORIAS": []any{"electronics", "office"}}
		assert.Empty(t, ComputeDiff(prior, Record{"CATEGORIAS": []any{"electronics", "office"}}))
		assert.NotEmpty(t, ComputeDiff(prior, Record{"CATEGORIAS": []any{"office", "electronics"}}))
		assert.NotEmpty(t, ComputeDiff(prior, Record{"CATEGORIAS": []any{"electronics"}}))
	})

	t.Run("string and typed string slices compare equal", func(t *testing.T) {
		prior := Record{"CATEGORIAS": []any{"electronics"}}
		assert.Empty(t, ComputeDiff(prior, Record{"CATEGORIAS": []string{"electronics"}}))
	})

	t.Run("nested maps compare by content", func(t *testing.T) {
		prior := Record{"INFOAD": map[string]any{"color": "red", "peso": int32(2)}}
		assert.Empty(t, ComputeDiff(prior, Record{"INFOAD": map[string]any{"color": "red", "peso": float64(2)}}))
		assert.NotEmpty(t, ComputeDiff(prior, Record{"INFOAD": map[string]any{"color": "blue", "peso": int32(2)}}))
	})

	t.Run("nil values", func(t *testing.T) {
		prior := Record{"INFOAD": nil}
		assert.Empty(t, ComputeDiff(prior, Record{"INFOAD": nil}))
		assert.NotEmpty(t, ComputeDiff(prior, Record{"INFOAD": "something"}))
	})
}

func TestExcludedFromDiff(t *testing.T) {
	for _, field := range []string{"HISTORY", "MODUSER", "MODDATE", "_id", "id", "_etag", "_ts"} {
		assert.True(t, ExcludedFromDiff(field), field)
	}
	assert.False(t, ExcludedFromDiff("SKUID"))
	assert.False(t, ExcludedFromDiff("REGUSER"))
}

func TestRecord_Clone(t *testing.T) {
	original := Record{
		"SKUID":   "SKU-001",
		"INFOAD":  map[string]any{"color": "red"},
		"HISTORY": []any{map[string]any{"action": "CREATE"}},
	}
	clone := original.Clone()
	require.Equal(t, map[string]any(original), map[string]any(clone))

	clone["SKUID"] = "SKU-002"
	clone["INFOAD"].(map[string]any)["color"] = "blue"
	clone["HISTORY"].([]any)[0].(map[string]any)["action"] = "UPDATE"

	assert.Equal(t, "SKU-001", original["SKUID"])
	assert.Equal(t, "red", original["INFOAD"].(map[string]any)["color"])
	assert.Equal(t, "CREATE", original["HISTORY"].([]any)[0].(map[string]any)["action"])
}

func TestRecord_History(t *testing.T) {
	stamp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("append preserves order", func(t *testing.T) {
		rec := Record{}
		rec.AppendHistory(NewChangeEntry("alice", stamp, ActionCreate, Record{"SKUID": "X"}))
		rec.AppendHistory(NewChangeEntry("bob", stamp.Add(time.Hour), ActionUpdate, Record{"DESSKU": "Y"}))

		history := rec.History()
		require.Len(t, history, 2)
		first := history[0].(map[string]any)
		second := history[1].(map[string]any)
		assert.Equal(t, "alice", first["user"])
		assert.Equal(t, "CREATE", first["action"])
		assert.Equal(t, "bob", second["user"])
		assert.Equal(t, "UPDATE", second["action"])
	})

	t.Run("entry carries the change set", func(t *testing.T) {
		entry := NewChangeEntry("alice", stamp, ActionUpdate, Record{"MARCA": "Acme"})
		assert.Equal(t, map[string]any{"MARCA": "Acme"}, entry["changes"])
		assert.Equal(t, stamp, entry["date"])
	})

	t.Run("empty history on fresh record", func(t *testing.T) {
		assert.Empty(t, Record{}.History())
	})
}

func TestRecord_IsLive(t *testing.T) {
	assert.True(t, Record{FieldActived: true, FieldDeleted: false}.IsLive())
	assert.False(t, Record{FieldActived: false, FieldDeleted: false}.IsLive())
	assert.False(t, Record{FieldActived: true, FieldDeleted: true}.IsLive())
	assert.False(t, Record{}.IsLive())
}
