// Package dataprocessing implements the streaming panel cleaner and the
// descriptive tables built on its output.
//
// # Architecture
//
// A run is a single sequential pass over ordered batches:
//
//	BatchSource → FilterPlaceholders → ValidateOrder → ComputeLags →
//	CarryoverState.Commit → WindowBuffer → Sink
//
// CarryoverState and WindowBuffer are the only values that outlive a batch.
// Both live in a StreamState owned by the caller, so independent streams never
// share memory.
//
// # Derived columns
//
// For every row that survives filtering:
//
//	raw_delta      = raw - lag
//	smoothed_delta = mean(raw_delta(t), raw_delta(t+1), raw_delta(t+2))
//	log_growth     = ln((lag + smoothed_delta) / lag), when both are positive
//
// A row is held in the WindowBuffer until the two following raw deltas of its
// entity are known. Windows cut short by the end of a series are averaged
// over the terms that exist (TailDegrade) or nulled (TailStrict). The first
// row of an entity in the stream has smoothed_delta 0 and no log_growth.
//
// # Usage
//
//	src, err := dataprocessing.OpenCSVSource("raw.csv", dataprocessing.DefaultColumns(), 300000)
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	pipeline := dataprocessing.NewPipeline(dataprocessing.DefaultOptions(),
//	    dataprocessing.WithLogger(logger))
//	summary, err := pipeline.Run(ctx, src, sink)
//
// For in-memory panels ProcessAll runs the same transform over a slice.
//
// # Error Handling
//
// Non-numeric share counts become null. An entity whose period moves
// backwards is rejected with errors.ErrOutOfOrder before any state changes.
// Reader failures carry the source line number.
package dataprocessing
