package dataprocessing

import (
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// StreamState is everything one streaming pass carries between batches.
// Independent streams use independent states; a state is not safe for
// concurrent use.
type StreamState struct {
	Carryover *CarryoverState
	Window    *WindowBuffer

	// active is the entity whose rows are currently flowing
	active    string
	hasActive bool
}

// NewStreamState creates the state for a new stream
func NewStreamState(opts ProcessingOptions) *StreamState {
	return &StreamState{
		Carryover: NewCarryoverState(),
		Window:    NewWindowBuffer(opts.TailPolicy),
	}
}

// BatchResult is what one ProcessBatch call produced
type BatchResult struct {
	// Rows are the rows whose windows closed during this batch, in emission order
	Rows []domain.DerivedRecord

	// Filtered counts placeholder rows dropped from the batch
	Filtered int

	// Reappeared lists entities that resumed after another entity's rows
	// intervened. Their earlier windows were already closed as tails.
	Reappeared []string
}

// ProcessBatch runs one batch through the transform. The batch is validated
// before any state changes, so an error leaves the state exactly as it was.
//
// Rows are emitted once their smoothing window closes, which may be in a
// later batch. When a different entity starts, the windows still open for
// the previous one are closed as tails, so pending rows never span more than
// the entity in flight.
func ProcessBatch(state *StreamState, batch []domain.PanelRecord) (*BatchResult, error) {
	kept, dropped := FilterPlaceholders(batch)
	result := &BatchResult{Filtered: dropped}

	if err := state.Carryover.ValidateOrder(kept); err != nil {
		return nil, err
	}

	lags := ComputeLags(state.Carryover, kept)
	state.Carryover.Commit(kept)

	for i, record := range kept {
		switched := !state.hasActive || record.Entity != state.active
		if switched && state.hasActive {
			result.Rows = append(result.Rows, state.Window.Retire(state.active)...)
		}

		first := state.Carryover.Observe(record.Entity)
		if switched && !first {
			result.Reappeared = append(result.Reappeared, record.Entity)
		}
		state.active, state.hasActive = record.Entity, true

		result.Rows = append(result.Rows, state.Window.Push(newDerived(record, lags[i], first))...)
	}
	return result, nil
}

// FinishStream closes every window still open at the end of the stream and
// returns the remaining rows
func FinishStream(state *StreamState) []domain.DerivedRecord {
	state.active, state.hasActive = "", false
	return state.Window.Flush()
}

// ProcessAll runs a whole in-memory panel as consecutive batches of
// batchSize rows. A batchSize below 1 processes everything as one batch.
func ProcessAll(records []domain.PanelRecord, batchSize int, opts ProcessingOptions) ([]domain.DerivedRecord, error) {
	if batchSize < 1 {
		batchSize = len(records)
	}
	state := NewStreamState(opts)

	var out []domain.DerivedRecord
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		result, err := ProcessBatch(state, records[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, result.Rows...)
	}
	return append(out, FinishStream(state)...), nil
}
