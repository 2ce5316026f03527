package entity

// Column holds one named value sequence of a table. The kind is resolved once
// at parse time: a column is numeric only when every value in it parses as a
// number, otherwise it is text. Exactly one of Numbers or Texts is populated.
type Column struct {
	Name    string
	Kind    ColumnKind
	Numbers []float64
	Texts   []string
}

func (c Column) Len() int {
	if c.Kind == ColumnKindText {
		return len(c.Texts)
	}
	return len(c.Numbers)
}

// Table is an in-memory tabular value: named columns in file order with
// equal-length value sequences. Row count may be zero.
type Table struct {
	Columns []Column
}

// Column returns the column with the given name, if present.
func (t Table) Column(name string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Rows returns the number of data rows in the table.
func (t Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}
