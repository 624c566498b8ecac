package domain

import (
	"reflect"
	"time"
)

// excludedFromDiff lists the fields that never participate in change
// detection: the history array, the modification stamps, and the
// bookkeeping fields each backend adds to stored items.
var excludedFromDiff = map[string]struct{}{
	FieldHistory: {},
	FieldModUser: {},
	FieldModDate: {},
	"_id":          {},
	"id":           {},
	"partitionKey": {},
	"_rid":         {},
	"_self":        {},
	"_etag":        {},
	"_attachments": {},
	"_ts":          {},
}

// ExcludedFromDiff reports whether a field is ignored by change detection.
func ExcludedFromDiff(field string) bool {
	_, ok := excludedFromDiff[field]
	return ok
}

// ComputeDiff returns the minimal field-level difference between a proposed
// update and the prior persisted record. With a nil prior (creation) every
// non-excluded proposed field is returned as-is. Values are compared by
// value, not reference; an empty result means the update is a no-op.
// The function has no side effects.
func ComputeDiff(prior Record, proposed Record) Record {
	out := Record{}
	for field, value := range proposed {
		if ExcludedFromDiff(field) {
			continue
		}
		if prior != nil {
			if current, ok := prior[field]; ok && valueEqual(current, value) {
				continue
			}
		}
		out[field] = value
	}
	return out
}

// valueEqual compares two decoded-JSON values structurally. Numeric types
// are compared by magnitude because the document driver decodes integers
// as int32/int64 while JSON decoding yields float64. Timestamps survive a
// JSON round trip as RFC 3339 strings, so time/string pairs are compared
// after parsing.
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if fa, ok := asFloat(a); ok {
		fb, okb := asFloat(b)
		return okb && fa == fb
	}

	if ta, ok := asTime(a); ok {
		tb, okb := asTime(b)
		return okb && ta.Equal(tb)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case va.Kind() == reflect.Slice || va.Kind() == reflect.Array:
		if vb.Kind() != reflect.Slice && vb.Kind() != reflect.Array {
			return false
		}
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !valueEqual(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case va.Kind() == reflect.Map:
		if vb.Kind() != reflect.Map || va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			mv := vb.MapIndex(iter.Key())
			if !mv.IsValid() || !valueEqual(iter.Value().Interface(), mv.Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
