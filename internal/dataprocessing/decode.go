package dataprocessing

import (
	"strings"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// rowDecoder maps positional cells onto a PanelRecord using header indices
type rowDecoder struct {
	entity, date, marker, value int
	passthrough                 []int
}

// newRowDecoder resolves the configured columns against a header row.
// Matching ignores surrounding space, a leading BOM and letter case.
func newRowDecoder(header []string, cols ColumnSpec) (*rowDecoder, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		key := strings.ToLower(name)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	lookup := func(name string) (int, error) {
		if i, ok := index[strings.ToLower(strings.TrimSpace(name))]; ok {
			return i, nil
		}
		return -1, apperrors.NewValidationError("required column not found in header", apperrors.ErrMissingColumn).
			WithContext("column", name)
	}

	d := &rowDecoder{}
	var err error
	if d.entity, err = lookup(cols.Entity); err != nil {
		return nil, err
	}
	if d.date, err = lookup(cols.Date); err != nil {
		return nil, err
	}
	if d.marker, err = lookup(cols.Marker); err != nil {
		return nil, err
	}
	if d.value, err = lookup(cols.Value); err != nil {
		return nil, err
	}
	for _, name := range cols.Passthrough {
		i, err := lookup(name)
		if err != nil {
			return nil, err
		}
		d.passthrough = append(d.passthrough, i)
	}
	return d, nil
}

// decode converts one data row. Placeholder rows (blank marker) are returned
// even when their date does not parse, since they are dropped before the
// transform; on any other row a bad date is a parsing error.
func (d *rowDecoder) decode(row []string, line int) (domain.PanelRecord, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	record := domain.PanelRecord{
		Entity:   cell(d.entity),
		Marker:   cell(d.marker),
		RawValue: ParseOptionalFloat(cell(d.value)),
		Line:     line,
	}
	if len(d.passthrough) > 0 {
		record.Fields = make([]string, len(d.passthrough))
		for j, i := range d.passthrough {
			record.Fields[j] = cell(i)
		}
	}

	placeholder := record.Marker == ""
	period, err := ParsePeriod(cell(d.date))
	if err != nil && !placeholder {
		return record, apperrors.NewParsingError("invalid date", err).WithContext("line", line)
	}
	record.Period = period

	if record.Entity == "" && !placeholder {
		return record, apperrors.NewParsingError("missing entity identifier", nil).WithContext("line", line)
	}
	return record, nil
}
