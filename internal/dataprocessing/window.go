package dataprocessing

import (
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// pendingEntry is a row waiting for the raw deltas of the periods after it
type pendingEntry struct {
	record domain.DerivedRecord
	terms  []domain.NullFloat
}

// WindowBuffer defers rows until their forward smoothing window is known.
// Each entity holds at most WindowSize-1 pending rows.
type WindowBuffer struct {
	policy  TailPolicy
	pending map[string][]*pendingEntry
	order   []string
}

// NewWindowBuffer creates an empty buffer resolving tails with policy
func NewWindowBuffer(policy TailPolicy) *WindowBuffer {
	if policy == "" {
		policy = TailDegrade
	}
	return &WindowBuffer{
		policy:  policy,
		pending: make(map[string][]*pendingEntry),
	}
}

// Policy returns the tail policy in effect
func (w *WindowBuffer) Policy() TailPolicy {
	return w.policy
}

// Push admits a row. Its raw delta first extends the windows of the entity's
// pending rows; rows whose window reaches WindowSize terms are returned in
// time order before the new row is queued.
func (w *WindowBuffer) Push(record domain.DerivedRecord) []domain.DerivedRecord {
	queue := w.pending[record.Entity]
	var resolved []domain.DerivedRecord

	remaining := queue[:0]
	for _, entry := range queue {
		entry.terms = append(entry.terms, record.RawDelta)
		if len(entry.terms) == WindowSize {
			resolved = append(resolved, Finalize(entry.record, entry.terms, w.policy))
			continue
		}
		remaining = append(remaining, entry)
	}

	if len(queue) == 0 {
		w.order = append(w.order, record.Entity)
	}
	terms := make([]domain.NullFloat, 1, WindowSize)
	terms[0] = record.RawDelta
	w.pending[record.Entity] = append(remaining, &pendingEntry{record: record, terms: terms})

	return resolved
}

// Retire closes every pending window of the entity as a tail and returns
// the rows in time order
func (w *WindowBuffer) Retire(entity string) []domain.DerivedRecord {
	queue, ok := w.pending[entity]
	if !ok {
		return nil
	}
	delete(w.pending, entity)
	for i, e := range w.order {
		if e == entity {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}

	resolved := make([]domain.DerivedRecord, 0, len(queue))
	for _, entry := range queue {
		resolved = append(resolved, Finalize(entry.record, entry.terms, w.policy))
	}
	return resolved
}

// Flush retires every entity still pending, in the order the entities were
// first admitted
func (w *WindowBuffer) Flush() []domain.DerivedRecord {
	var resolved []domain.DerivedRecord
	for len(w.order) > 0 {
		resolved = append(resolved, w.Retire(w.order[0])...)
	}
	return resolved
}

// Len returns the number of pending rows across all entities
func (w *WindowBuffer) Len() int {
	n := 0
	for _, queue := range w.pending {
		n += len(queue)
	}
	return n
}
