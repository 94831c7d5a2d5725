package dataprocessing

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// XLSXSource streams a worksheet row by row in fixed-size batches
type XLSXSource struct {
	file      *excelize.File
	rows      *excelize.Rows
	decoder   *rowDecoder
	chunkSize int
	line      int
	done      bool
}

// OpenXLSXSource opens the workbook at path and reads the header of sheet.
// An empty sheet name selects the first worksheet.
func OpenXLSXSource(path, sheet string, cols ColumnSpec, chunkSize int) (*XLSXSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, apperrors.NewValidationError("workbook has no sheets", apperrors.ErrEmptyInput).
				WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, apperrors.NewNotFoundError("sheet "+sheet).WithContext("path", path)
	}

	src := &XLSXSource{file: f, rows: rows, chunkSize: max(chunkSize, 1)}

	header, ok, err := src.readRow()
	if err != nil {
		src.Close()
		return nil, err
	}
	if !ok {
		src.Close()
		return nil, apperrors.NewValidationError("sheet has no header row", apperrors.ErrEmptyInput).
			WithContext("sheet", sheet)
	}

	if src.decoder, err = newRowDecoder(header, cols); err != nil {
		src.Close()
		return nil, err
	}
	return src, nil
}

// readRow advances to the next sheet row. Cells are read unformatted so
// dates arrive as serial numbers.
func (s *XLSXSource) readRow() ([]string, bool, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, false, apperrors.NewParsingError("failed to read sheet row", err)
		}
		return nil, false, nil
	}
	s.line++
	cols, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false, apperrors.NewParsingError("failed to read sheet row", err).WithContext("line", s.line)
	}
	return cols, true, nil
}

// Next returns the next batch of at most chunkSize records, or io.EOF
func (s *XLSXSource) Next(ctx context.Context) ([]domain.PanelRecord, error) {
	if s.done {
		return nil, io.EOF
	}

	var batch []domain.PanelRecord
	for len(batch) < s.chunkSize {
		row, ok, err := s.readRow()
		if err != nil {
			return nil, err
		}
		if !ok {
			s.done = true
			break
		}
		if len(row) == 0 {
			continue
		}
		record, err := s.decoder.decode(row, s.line)
		if err != nil {
			return nil, err
		}
		batch = append(batch, record)
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// Close releases the row iterator and the workbook
func (s *XLSXSource) Close() error {
	if s.rows != nil {
		s.rows.Close()
	}
	return s.file.Close()
}
