package dataprocessing

import (
	"fmt"
	"time"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// CarryoverState is the per-entity memory that survives batch boundaries.
// It holds one scalar per distinct entity, never per row.
type CarryoverState struct {
	lastRaw    map[string]domain.NullFloat
	lastPeriod map[string]time.Time
	seen       map[string]struct{}
}

// NewCarryoverState creates empty carryover state for a new stream
func NewCarryoverState() *CarryoverState {
	return &CarryoverState{
		lastRaw:    make(map[string]domain.NullFloat),
		lastPeriod: make(map[string]time.Time),
		seen:       make(map[string]struct{}),
	}
}

// LastRaw returns the raw value of the entity's last row in an earlier batch.
// ok is false when no earlier batch contained the entity.
func (c *CarryoverState) LastRaw(entity string) (value domain.NullFloat, ok bool) {
	value, ok = c.lastRaw[entity]
	return value, ok
}

// Seen reports whether the entity has been observed anywhere in the stream
func (c *CarryoverState) Seen(entity string) bool {
	_, ok := c.seen[entity]
	return ok
}

// Observe marks the entity as seen and reports whether this was its first
// observation in the stream
func (c *CarryoverState) Observe(entity string) (first bool) {
	if _, ok := c.seen[entity]; ok {
		return false
	}
	c.seen[entity] = struct{}{}
	return true
}

// Entities returns the number of distinct entities carried
func (c *CarryoverState) Entities() int {
	return len(c.seen)
}

// ValidateOrder checks that no row moves an entity backwards in time, both
// within the batch and against the last period committed by earlier batches.
// It never mutates the state.
func (c *CarryoverState) ValidateOrder(batch []domain.PanelRecord) error {
	latest := make(map[string]time.Time)
	for _, record := range batch {
		prev, ok := latest[record.Entity]
		if !ok {
			prev, ok = c.lastPeriod[record.Entity]
		}
		if ok && record.Period.Before(prev) {
			return apperrors.NewValidationError(
				fmt.Sprintf("entity %s moved back in time", record.Entity),
				apperrors.ErrOutOfOrder,
			).WithContext("entity", record.Entity).
				WithContext("period", record.Period.Format(domain.PeriodLayout)).
				WithContext("previous", prev.Format(domain.PeriodLayout)).
				WithContext("line", record.Line)
		}
		latest[record.Entity] = record.Period
	}
	return nil
}

// Commit records, for every entity in the batch, the raw value and period of
// its last row. It must run only after every lag of the batch is computed.
func (c *CarryoverState) Commit(batch []domain.PanelRecord) {
	for _, record := range batch {
		c.lastRaw[record.Entity] = record.RawValue
		c.lastPeriod[record.Entity] = record.Period
	}
}
