package dataprocessing

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// CSVSource reads a delimited panel file in fixed-size batches without
// loading it whole
type CSVSource struct {
	reader    *csv.Reader
	closer    io.Closer
	decoder   *rowDecoder
	chunkSize int
	done      bool
}

// OpenCSVSource opens path and reads its header
func OpenCSVSource(path string, cols ColumnSpec, chunkSize int) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open input", err).WithContext("path", path)
	}
	src, err := NewCSVSource(f, cols, chunkSize)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// NewCSVSource reads the header from r and prepares batched reading.
// A chunkSize below 1 reads one row per batch.
func NewCSVSource(r io.Reader, cols ColumnSpec, chunkSize int) (*CSVSource, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == utf8BOM {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewValidationError("input has no header row", apperrors.ErrEmptyInput)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err)
	}

	decoder, err := newRowDecoder(header, cols)
	if err != nil {
		return nil, err
	}

	return &CSVSource{
		reader:    reader,
		decoder:   decoder,
		chunkSize: max(chunkSize, 1),
	}, nil
}

// Next returns the next batch of at most chunkSize records, or io.EOF
func (s *CSVSource) Next(ctx context.Context) ([]domain.PanelRecord, error) {
	if s.done {
		return nil, io.EOF
	}

	batch := make([]domain.PanelRecord, 0, min(s.chunkSize, 4096))
	for len(batch) < s.chunkSize {
		row, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			s.done = true
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed CSV row", err)
		}
		line, _ := s.reader.FieldPos(0)
		record, err := s.decoder.decode(row, line)
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

// Close releases the underlying file, if the source opened one
func (s *CSVSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
