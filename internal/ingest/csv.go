package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	apperrors "tradelens/internal/errors"
)

// Page is one chunk of an uploaded trade log together with its position in
// the upload sequence. Downstream chronological analysis assumes pages are
// concatenated in ascending page order.
type Page struct {
	Number int
	Rows   []RawRow
}

// ReadCSV reads an entire CSV stream into raw rows keyed by header column.
// The first record is the header; a UTF-8 BOM on the first column is
// stripped. Short rows are padded with empty values rather than rejected so
// that required-field validation happens in one place, in Normalize.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if len(header) == 0 {
		return nil, apperrors.ErrMissingHeader
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+2, err)
		}

		row := make(RawRow, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadCSVFile reads a trade log CSV from disk.
func ReadCSVFile(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ConcatPages stitches paged rows back into one ordered row sequence. Pages
// are sorted by page number first so callers may deliver them out of order.
func ConcatPages(pages []Page) []RawRow {
	sorted := make([]Page, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	total := 0
	for _, p := range sorted {
		total += len(p.Rows)
	}
	rows := make([]RawRow, 0, total)
	for _, p := range sorted {
		rows = append(rows, p.Rows...)
	}
	return rows
}
