package entity

import (
	"strconv"
	"time"
)

// CellKind tags the value held by a Cell.
type CellKind int

const (
	CellNull CellKind = iota
	CellString
	CellNumber
	CellTime
)

// Cell is one dataset value. Missing fields stay CellNull rather than
// becoming zero values, so sparse extraction is distinguishable from real
// zeros downstream.
type Cell struct {
	kind CellKind
	str  string
	num  float64
	t    time.Time
}

func NullCell() Cell            { return Cell{kind: CellNull} }
func StringCell(s string) Cell  { return Cell{kind: CellString, str: s} }
func NumberCell(f float64) Cell { return Cell{kind: CellNumber, num: f} }
func TimeCell(t time.Time) Cell { return Cell{kind: CellTime, t: t} }

func (c Cell) Kind() CellKind { return c.kind }
func (c Cell) IsNull() bool   { return c.kind == CellNull }

// Number reports the numeric value and whether the cell holds one.
func (c Cell) Number() (float64, bool) {
	return c.num, c.kind == CellNumber
}

// Time reports the date value and whether the cell holds one.
func (c Cell) Time() (time.Time, bool) {
	return c.t, c.kind == CellTime
}

// Render formats the cell for delimited and spreadsheet output. Nulls render
// empty, dates render date-only, numbers drop insignificant zeros.
func (c Cell) Render() string {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case CellTime:
		return c.t.Format("2006-01-02")
	default:
		return ""
	}
}

// Value returns the cell content for spreadsheet/JSON encoders, nil for null.
func (c Cell) Value() any {
	switch c.kind {
	case CellString:
		return c.str
	case CellNumber:
		return c.num
	case CellTime:
		return c.t.Format("2006-01-02")
	default:
		return nil
	}
}

// Row maps column name to cell. Columns absent from a row read as null.
type Row map[string]Cell

// Dataset is the unioned, column-aligned record set: one row per input
// document, rows in document insertion order, Columns in first-seen order.
type Dataset struct {
	Columns []string
	Rows    []Row

	// KeyColumn names the unique row key when the identifier column is
	// fully populated; "" means rows are positionally indexed.
	KeyColumn string
}

// Cell returns the value at (row, column), null when the row lacks it.
func (d *Dataset) Cell(row int, column string) Cell {
	if row < 0 || row >= len(d.Rows) {
		return NullCell()
	}
	if c, ok := d.Rows[row][column]; ok {
		return c
	}
	return NullCell()
}

// Column returns the ordered cells of one column, one per row.
func (d *Dataset) Column(name string) []Cell {
	out := make([]Cell, len(d.Rows))
	for i := range d.Rows {
		out[i] = d.Cell(i, name)
	}
	return out
}

// HasColumn reports whether the column is part of the dataset.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether a column holds at least one number and nothing
// but numbers in its non-null cells.
func (d *Dataset) IsNumeric(name string) bool {
	seen := false
	for _, c := range d.Column(name) {
		switch c.Kind() {
		case CellNumber:
			seen = true
		case CellNull:
		default:
			return false
		}
	}
	return seen
}

// NumericColumns returns the numeric columns in dataset column order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, name := range d.Columns {
		if d.IsNumeric(name) {
			out = append(out, name)
		}
	}
	return out
}

// RowRef identifies a row for reporting: the key column value when the
// dataset is keyed, the positional index otherwise.
func (d *Dataset) RowRef(i int) string {
	if d.KeyColumn != "" {
		if c := d.Cell(i, d.KeyColumn); !c.IsNull() {
			return c.Render()
		}
	}
	return strconv.Itoa(i)
}

// Clone returns a deep copy. Consumers that enrich the dataset in place
// (date bucketing, grouping) must work on a copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns:   append([]string(nil), d.Columns...),
		Rows:      make([]Row, len(d.Rows)),
		KeyColumn: d.KeyColumn,
	}
	for i, r := range d.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}
