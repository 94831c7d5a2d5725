package dataprocessing

import (
	"context"
	"fmt"

	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// BatchSource yields ordered batches of panel records. Within a batch the rows
// of one entity are contiguous and time-ordered; across batches an entity's
// series may be split at any point. Next returns io.EOF after the last batch.
type BatchSource interface {
	Next(ctx context.Context) ([]domain.PanelRecord, error)
}

// Sink receives finalized rows in emission order. writeHeader is true only on
// the first call of a run.
type Sink interface {
	Append(rows []domain.DerivedRecord, writeHeader bool) error
}

// TailPolicy decides how smoothing windows cut short by the end of an
// entity's series are resolved
type TailPolicy string

const (
	// TailDegrade averages over the raw deltas that exist (1 or 2 terms)
	TailDegrade TailPolicy = "degrade"
	// TailStrict requires all 3 terms; incomplete windows resolve to null
	TailStrict TailPolicy = "strict"
)

// ParseTailPolicy converts a configuration string to a TailPolicy.
// The empty string selects TailDegrade.
func ParseTailPolicy(s string) (TailPolicy, error) {
	switch TailPolicy(s) {
	case "", TailDegrade:
		return TailDegrade, nil
	case TailStrict:
		return TailStrict, nil
	default:
		return "", fmt.Errorf("unknown tail policy %q", s)
	}
}

// WindowSize is the number of raw-delta terms in a smoothing window: the
// period itself and the two that follow
const WindowSize = 3

// ProcessingOptions configures the streaming transform
type ProcessingOptions struct {
	// TailPolicy resolves windows left incomplete at the end of a series
	TailPolicy TailPolicy
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		TailPolicy: TailDegrade,
	}
}

// ColumnSpec names the panel columns a source maps onto PanelRecord
type ColumnSpec struct {
	Entity      string
	Date        string
	Marker      string
	Value       string
	Passthrough []string
}

// DefaultColumns returns the CRSP monthly stock file layout
func DefaultColumns() ColumnSpec {
	return ColumnSpec{
		Entity:      "PERMNO",
		Date:        "date",
		Marker:      "TICKER",
		Value:       "SHROUT",
		Passthrough: []string{"TICKER", "COMNAM", "PERMCO", "CUSIP", "NWPERM"},
	}
}
