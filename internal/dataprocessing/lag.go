package dataprocessing

import (
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// ComputeLags returns the previous-period raw value for every row of the
// batch. A row whose entity already occurred earlier in the batch lags that
// occurrence. The first row of an entity in the batch falls back to the value
// carried from earlier batches, or null when there is none.
//
// The carryover state is only read here; callers commit the batch afterwards.
func ComputeLags(state *CarryoverState, batch []domain.PanelRecord) []domain.NullFloat {
	lags := make([]domain.NullFloat, len(batch))
	previous := make(map[string]domain.NullFloat)

	for i, record := range batch {
		if prev, ok := previous[record.Entity]; ok {
			lags[i] = prev
		} else if carried, ok := state.LastRaw(record.Entity); ok {
			lags[i] = carried
		}
		previous[record.Entity] = record.RawValue
	}
	return lags
}
