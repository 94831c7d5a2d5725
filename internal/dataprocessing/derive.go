package dataprocessing

import (
	"math"

	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// RawDelta is the period-over-period change raw - lag
func RawDelta(raw, lag domain.NullFloat) domain.NullFloat {
	return raw.Sub(lag)
}

// SmoothedDelta averages the window terms. Any null term nulls the result.
// A window with fewer than WindowSize terms is averaged over the terms it has
// under TailDegrade and is null under TailStrict.
func SmoothedDelta(terms []domain.NullFloat, policy TailPolicy) domain.NullFloat {
	if len(terms) == 0 {
		return domain.Null()
	}
	if len(terms) < WindowSize && policy == TailStrict {
		return domain.Null()
	}
	var sum float64
	for _, term := range terms {
		if !term.Valid {
			return domain.Null()
		}
		sum += term.Float64
	}
	return domain.Float(sum / float64(len(terms)))
}

// LogGrowth returns ln((lag+smoothed)/lag). It is null unless both the lag
// and the redistributed level are strictly positive.
func LogGrowth(lag, smoothed domain.NullFloat) domain.NullFloat {
	denominator := lag.Add(smoothed)
	if !denominator.Valid || !lag.Valid {
		return domain.Null()
	}
	if denominator.Float64 <= 0 || lag.Float64 <= 0 {
		return domain.Null()
	}
	return domain.Float(math.Log(denominator.Float64 / lag.Float64))
}

// Finalize fills the smoothed delta and log growth of a record whose window
// is closed. The first observation of an entity always gets a zero smoothed
// delta and no log growth.
func Finalize(record domain.DerivedRecord, terms []domain.NullFloat, policy TailPolicy) domain.DerivedRecord {
	record.WindowTerms = len(terms)
	if record.FirstObservation {
		record.SmoothedDelta = domain.Float(0)
		record.LogGrowth = domain.Null()
		return record
	}
	record.SmoothedDelta = SmoothedDelta(terms, policy)
	record.LogGrowth = LogGrowth(record.Lag, record.SmoothedDelta)
	return record
}

// newDerived maps a filtered input row onto its output row. The smoothed
// columns stay null until the window resolves.
func newDerived(record domain.PanelRecord, lag domain.NullFloat, first bool) domain.DerivedRecord {
	return domain.DerivedRecord{
		Entity:           record.Entity,
		Period:           record.Period,
		NextPeriod:       domain.NextPeriod(record.Period),
		Fields:           record.Fields,
		RawValue:         record.RawValue,
		Lag:              lag,
		RawDelta:         RawDelta(record.RawValue, lag),
		FirstObservation: first,
	}
}
