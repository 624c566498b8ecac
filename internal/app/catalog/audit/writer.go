// Package audit implements the audit-trailed write path shared by every
// collection and both storage backends. All creating and updating writes go
// through Writer.Save; there is no hook-on-save mechanism anywhere else.
package audit

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-service/internal/app/catalog/contracts"
	"github.com/light-bringer/catalog-service/internal/app/catalog/domain"
	"github.com/light-bringer/catalog-service/internal/pkg/clock"
	"github.com/light-bringer/catalog-service/internal/pkg/query"
)

// Writer stamps REGUSER/REGDATE and MODUSER/MODDATE fields and maintains
// the append-only HISTORY array of each record. The same Writer serves both
// backend adapters; they differ in how they locate and replace documents,
// never in the audit semantics produced.
type Writer struct {
	clock clock.Clock
}

// NewWriter creates an audit Writer using the given clock.
func NewWriter(clk clock.Clock) *Writer {
	return &Writer{clock: clk}
}

// Save persists data with audit stamps and a history entry.
//
// ActionCreate builds a new record from data, stamps REGUSER/REGDATE, and
// seeds HISTORY with a single CREATE entry whose changes are the full
// initial snapshot.
//
// ActionUpdate locates the record via filter (domain.ErrNotFound when it
// does not exist), diffs data against it, and, only when the diff is
// non-empty, stamps MODUSER/MODDATE, appends one UPDATE entry, and writes
// the merged record back. An empty diff returns the persisted record
// unchanged and performs no write: a no-op update never grows HISTORY.
func (w *Writer) Save(ctx context.Context, store contracts.Store, filter query.Filter, data domain.Record, user string, action domain.Action) (domain.Record, error) {
	switch action {
	case domain.ActionCreate:
		return w.create(ctx, store, data, user)
	case domain.ActionUpdate:
		return w.update(ctx, store, filter, data, user)
	default:
		return nil, fmt.Errorf("unsupported audit action %q", action)
	}
}

func (w *Writer) create(ctx context.Context, store contracts.Store, data domain.Record, user string) (domain.Record, error) {
	now := w.clock.Now()

	rec := data.Clone()
	if _, ok := rec[domain.FieldActived]; !ok {
		rec[domain.FieldActived] = true
	}
	if _, ok := rec[domain.FieldDeleted]; !ok {
		rec[domain.FieldDeleted] = false
	}
	rec[domain.FieldRegUser] = user
	rec[domain.FieldRegDate] = now
	rec[domain.FieldModUser] = nil
	rec[domain.FieldModDate] = nil

	snapshot := domain.ComputeDiff(nil, rec)
	rec[domain.FieldHistory] = []any{}
	rec.AppendHistory(domain.NewChangeEntry(user, now, domain.ActionCreate, snapshot))

	created, err := store.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (w *Writer) update(ctx context.Context, store contracts.Store, filter query.Filter, data domain.Record, user string) (domain.Record, error) {
	existing, err := store.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}

	diff := domain.ComputeDiff(existing, data)
	if len(diff) == 0 {
		// No effective change: successful no-op, skip the write entirely.
		return existing, nil
	}

	now := w.clock.Now()
	updated := existing.Clone()
	for field, value := range diff {
		updated[field] = value
	}
	updated[domain.FieldModUser] = user
	updated[domain.FieldModDate] = now
	updated.AppendHistory(domain.NewChangeEntry(user, now, domain.ActionUpdate, diff))

	replaced, err := store.Replace(ctx, filter, updated)
	if err != nil {
		return nil, err
	}
	return replaced, nil
}
