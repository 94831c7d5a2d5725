package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// naTokens are the cell values read as missing, matching the placeholders
// the CRSP extracts and spreadsheet exports use
var naTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"#N/A": {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
	"null": {},
	".":    {},
}

// IsMissing reports whether a raw cell holds no value
func IsMissing(s string) bool {
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

// ParseOptionalFloat converts a raw cell to a nullable number. Anything that
// is not a finite number, including thousands-separated text that fails to
// parse after removing commas, becomes null.
func ParseOptionalFloat(s string) domain.NullFloat {
	s = strings.TrimSpace(s)
	if IsMissing(s) {
		return domain.Null()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return domain.Null()
	}
	return domain.Float(v)
}

// periodLayouts are tried in order by ParsePeriod
var periodLayouts = []string{
	domain.PeriodLayout,
	"2006/01/02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParsePeriod parses a date cell. Besides the text layouts it accepts Excel
// serial day numbers, which workbooks store for unformatted date cells.
func ParsePeriod(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
