package usecase

import (
	"fmt"
	"strings"

	"github.com/PUM13-2023/StatDash/internal/graph/entity"
)

const defaultChartTitle = "Test graph from csv file"

// chartKinds lists the supported kinds with their required columns, in
// priority order. The first matching kind wins; anything outside the list is
// an error, never a silent default.
var chartKinds = []struct {
	kind    entity.ChartKind
	columns []string
}{
	{entity.ChartKindLine, []string{"x", "y"}},
	{entity.ChartKindScatter, []string{"x", "y"}},
	{entity.ChartKindHistogram, []string{"x"}},
}

// MissingColumnError reports the required columns a table does not have.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return "missing required column(s): " + strings.Join(e.Columns, ", ")
}

// UnknownChartKindError reports a chart kind outside the supported set.
type UnknownChartKindError struct {
	Kind string
}

func (e *UnknownChartKindError) Error() string {
	return fmt.Sprintf("unknown chart kind %q", e.Kind)
}

// NonNumericColumnError reports a required column that parsed as text and so
// cannot feed a numeric series.
type NonNumericColumnError struct {
	Column string
}

func (e *NonNumericColumnError) Error() string {
	return fmt.Sprintf("column %q is not numeric", e.Column)
}

// buildChart validates that the table has the columns the requested kind
// needs and produces the chart spec. The series are fresh copies with no
// aliasing back into the table. A table with zero rows but the right columns
// yields a spec with empty series; an empty chart is not an error.
func buildChart(table entity.Table, kind entity.ChartKind, title string) (entity.ChartSpec, error) {
	var required []string
	found := false
	for _, candidate := range chartKinds {
		if candidate.kind == kind {
			required = candidate.columns
			found = true
			break
		}
	}
	if !found {
		return entity.ChartSpec{}, &UnknownChartKindError{Kind: string(kind)}
	}

	var missing []string
	for _, name := range required {
		if _, ok := table.Column(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return entity.ChartSpec{}, &MissingColumnError{Columns: missing}
	}

	series := entity.Series{}
	for _, name := range required {
		column, _ := table.Column(name)
		if column.Kind != entity.ColumnKindNumeric {
			return entity.ChartSpec{}, &NonNumericColumnError{Column: name}
		}

		values := make([]float64, len(column.Numbers))
		copy(values, column.Numbers)

		switch name {
		case "x":
			series.X = values
		case "y":
			series.Y = values
		}
	}

	if title == "" {
		title = defaultChartTitle
	}

	return entity.ChartSpec{Kind: kind, Title: title, Series: series}, nil
}
