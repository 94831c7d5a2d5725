package domain

import (
	"time"
)

// PeriodLayout is the date layout used for period columns in panel files.
const PeriodLayout = "2006-01-02"

// PanelRecord is one entity/month observation read from the raw panel
type PanelRecord struct {
	// Entity is the stable security identifier (PERMNO)
	Entity string `json:"entity" validate:"required"`

	// Period is the observation date, normally a month end
	Period time.Time `json:"period"`

	// Marker holds the ticker-equivalent value. Rows with a blank marker are
	// block-start placeholders and never enter the transform.
	Marker string `json:"marker"`

	// RawValue is the share count (SHROUT); null when missing or non-numeric
	RawValue NullFloat `json:"raw_value"`

	// Fields are the descriptive passthrough columns in configured order
	Fields []string `json:"fields,omitempty"`

	// Line is the 1-based source line (or sheet row) the record came from
	Line int `json:"line,omitempty"`
}

// DerivedRecord is one finalized output row of the cleaned panel
type DerivedRecord struct {
	Entity     string    `json:"entity"`
	Period     time.Time `json:"period"`
	NextPeriod time.Time `json:"next_period"`
	Fields     []string  `json:"fields,omitempty"`

	RawValue      NullFloat `json:"raw_value"`
	Lag           NullFloat `json:"lag"`
	RawDelta      NullFloat `json:"raw_delta"`
	SmoothedDelta NullFloat `json:"smoothed_delta"`
	LogGrowth     NullFloat `json:"log_growth"`

	// FirstObservation is set on the earliest row of the entity in the stream
	FirstObservation bool `json:"first_observation"`

	// WindowTerms is the number of raw-delta terms the smoothed value used
	WindowTerms int `json:"window_terms"`
}

// NextPeriod advances t by exactly one calendar month. Month-end dates map to
// the next month's end; other days are clamped to the next month's length
// instead of overflowing the way time.AddDate does.
func NextPeriod(t time.Time) time.Time {
	y, m, d := t.Date()
	nextFirst := time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
	nextLen := daysIn(nextFirst)

	if d == daysIn(t) || d > nextLen {
		d = nextLen
	}
	h, mi, s := t.Clock()
	return time.Date(nextFirst.Year(), nextFirst.Month(), d, h, mi, s, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in t's month
func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
