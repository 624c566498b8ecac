package domain

import (
	"time"
)

// Audit and lifecycle field names shared by every collection.
const (
	FieldRegUser = "REGUSER"
	FieldRegDate = "REGDATE"
	FieldModUser = "MODUSER"
	FieldModDate = "MODDATE"
	FieldActived = "ACTIVED"
	FieldDeleted = "DELETED"
	FieldHistory = "HISTORY"
)

// Action identifies the kind of change recorded in a history entry.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Record is a schemaless entity instance as it travels between the
// orchestrators, the audit writer, and the storage adapters. Both backends
// decode into this shape so the audit semantics are backend-independent.
type Record map[string]any

// NewChangeEntry builds one history entry. Entries are plain maps rather
// than structs so that a record read back from either backend compares
// equal to one built in memory.
func NewChangeEntry(user string, date time.Time, action Action, changes Record) Record {
	return Record{
		"user":    user,
		"date":    date,
		"action":  string(action),
		"changes": map[string]any(changes),
	}
}

// Clone returns a deep copy of the record. History entries and nested
// payload values are copied so callers can mutate the result freely.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return deepCopyMap(r)
}

// String returns the field as a string, or "" when absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Bool returns the field as a bool, false when absent.
func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// History returns the record's history entries in insertion order.
func (r Record) History() []any {
	h, _ := r[FieldHistory].([]any)
	return h
}

// AppendHistory appends one entry to the history array.
func (r Record) AppendHistory(entry Record) {
	r[FieldHistory] = append(r.History(), map[string]any(entry))
}

// IsLive reports whether the record is in the live lifecycle state
// (ACTIVED=true, DELETED=false).
func (r Record) IsLive() bool {
	return r.Bool(FieldActived) && !r.Bool(FieldDeleted)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return deepCopyMap(tv)
	case Record:
		return deepCopyMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(tv))
		copy(out, tv)
		return out
	default:
		return v
	}
}
