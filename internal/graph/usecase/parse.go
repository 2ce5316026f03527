package usecase

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
)

var (
	ErrEmptyInput      = errors.New("csv input is empty")
	ErrInvalidEncoding = errors.New("csv input is not valid utf-8")
)

// MalformedRowError reports a data row whose field count differs from the
// header. Row is 1-based, counting from the first row after the header.
type MalformedRowError struct {
	Row  int
	Want int
	Got  int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d has %d fields, header defines %d", e.Row, e.Got, e.Want)
}

// parseTable interprets data as UTF-8 CSV: the first line defines the column
// names, every following line is one row. Parsing is all-or-nothing; on any
// failure no partial table is returned.
func parseTable(data []byte) (entity.Table, error) {
	if len(data) == 0 {
		return entity.Table{}, ErrEmptyInput
	}
	if !utf8.Valid(data) {
		return entity.Table{}, ErrInvalidEncoding
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return entity.Table{}, ErrEmptyInput
	}
	if err != nil {
		return entity.Table{}, fmt.Errorf("read csv header: %w", err)
	}

	cells := make([][]string, len(header))
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entity.Table{}, fmt.Errorf("read csv row: %w", err)
		}

		row++
		if len(record) != len(header) {
			return entity.Table{}, &MalformedRowError{Row: row, Want: len(header), Got: len(record)}
		}
		for i, value := range record {
			cells[i] = append(cells[i], strings.TrimSpace(value))
		}
	}

	columns := make([]entity.Column, 0, len(header))
	for i, name := range header {
		columns = append(columns, buildColumn(strings.TrimSpace(name), cells[i]))
	}

	return entity.Table{Columns: columns}, nil
}

// buildColumn resolves the column kind once: numeric when every value parses
// as a number, text otherwise. A column with no values stays numeric so that
// charts over a header-only file still build, just with empty series.
func buildColumn(name string, values []string) entity.Column {
	numbers := make([]float64, 0, len(values))
	for _, value := range values {
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return entity.Column{Name: name, Kind: entity.ColumnKindText, Texts: slices.Clone(values)}
		}
		numbers = append(numbers, number)
	}

	return entity.Column{Name: name, Kind: entity.ColumnKindNumeric, Numbers: numbers}
}
