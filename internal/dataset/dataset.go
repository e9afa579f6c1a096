package dataset

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// FieldType is the inferred type of a column, decided once when the
// Dataset is constructed.
type FieldType int

const (
	TypeText FieldType = iota
	TypeNumeric
	TypeDate
)

func (t FieldType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeDate:
		return "date"
	default:
		return "text"
	}
}

// Column describes one field of the schema.
type Column struct {
	Name string
	Type FieldType
}

// Dataset is an immutable, fully materialized table. Rows are indexed from 0;
// an empty cell is a missing value.
type Dataset struct {
	name  string
	cols  []Column
	rows  [][]string
	index map[string]int // lower-cased column name -> position
}

// New builds a Dataset from a header and raw rows, inferring a type for each
// column from the majority of its parseable non-empty values. Short rows are
// padded; extra cells beyond the header are dropped.
func New(name string, header []string, rows [][]string) *Dataset {
	ncol := len(header)
	d := &Dataset{
		name:  name,
		cols:  make([]Column, ncol),
		rows:  make([][]string, 0, len(rows)),
		index: make(map[string]int, ncol),
	}
	numCnt := make([]int, ncol)
	dtCnt := make([]int, ncol)
	txtCnt := make([]int, ncol)

	for _, rec := range rows {
		row := make([]string, ncol)
		for j := 0; j < ncol && j < len(rec); j++ {
			row[j] = strings.TrimSpace(rec[j])
		}
		d.rows = append(d.rows, row)
		for j, v := range row {
			if v == "" {
				continue
			}
			if _, ok := ParseNumber(v); ok {
				numCnt[j]++
				continue
			}
			if _, ok := ParseTime(v); ok {
				dtCnt[j]++
				continue
			}
			txtCnt[j]++
		}
	}

	for j := range header {
		name := strings.TrimSpace(header[j])
		kind := TypeText
		if numCnt[j] >= dtCnt[j] && numCnt[j] >= txtCnt[j] && numCnt[j] > 0 {
			kind = TypeNumeric
		} else if dtCnt[j] >= txtCnt[j] && dtCnt[j] > 0 {
			kind = TypeDate
		}
		d.cols[j] = Column{Name: name, Type: kind}
		d.index[strings.ToLower(name)] = j
	}
	return d
}

// Name returns the dataset's display name (usually the source file name).
func (d *Dataset) Name() string { return d.name }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns the schema in declaration order.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.cols))
	copy(out, d.cols)
	return out
}

// Header returns the column names in declaration order.
func (d *Dataset) Header() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex resolves a column name (case-insensitive) to its position.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// HasColumn reports whether the schema contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.ColumnIndex(name)
	return ok
}

// Value returns the raw cell value; ok is false when the cell is missing or
// the coordinates are out of range.
func (d *Dataset) Value(row int, col string) (string, bool) {
	j, ok := d.ColumnIndex(col)
	if !ok || row < 0 || row >= len(d.rows) {
		return "", false
	}
	v := d.rows[row][j]
	return v, v != ""
}

// Float returns the cell parsed as a number.
func (d *Dataset) Float(row int, col string) (float64, bool) {
	v, ok := d.Value(row, col)
	if !ok {
		return 0, false
	}
	return ParseNumber(v)
}

// Time returns the cell parsed as a date.
func (d *Dataset) Time(row int, col string) (time.Time, bool) {
	v, ok := d.Value(row, col)
	if !ok {
		return time.Time{}, false
	}
	return ParseTime(v)
}

// Record returns a snapshot of one row as a field->value map, suitable for
// report examples. Missing cells are omitted.
func (d *Dataset) Record(row int) map[string]string {
	if row < 0 || row >= len(d.rows) {
		return nil
	}
	out := make(map[string]string, len(d.cols))
	for j, c := range d.cols {
		if v := d.rows[row][j]; v != "" {
			out[c.Name] = v
		}
	}
	return out
}

// Rows returns a deep copy of the raw cell values. Callers that derive a
// cleaned dataset mutate the copy and construct a new Dataset from it.
func (d *Dataset) Rows() [][]string {
	out := make([][]string, len(d.rows))
	for i, r := range d.rows {
		cp := make([]string, len(r))
		copy(cp, r)
		out[i] = cp
	}
	return out
}

// timeLayouts covers the date formats commonly seen in exported spreadsheets.
var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// ParseTime parses a date value using the known layouts, falling back to the
// broader cast repertoire for anything exotic.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	if t, err := cast.StringToDate(s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseNumber parses a numeric value, tolerating a decimal comma and common
// thousands separators. Values that parse as dates are not numbers.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	// A plain float or int is the overwhelmingly common case.
	if f, err := cast.ToFloat64E(raw); err == nil {
		return f, true
	}
	// Locale handling: decide which separator is the decimal point.
	raw = strings.ReplaceAll(raw, " ", " ")
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	dec := byte('.')
	if cpos >= 0 && dpos >= 0 {
		if cpos > dpos {
			dec = ','
		}
	} else if cpos >= 0 {
		dec = ','
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == dec:
			b.WriteByte('.')
		case c == ',' || c == '.' || c == ' ':
			// thousands separator, skip
		default:
			b.WriteByte(c)
		}
	}
	f, err := cast.ToFloat64E(b.String())
	if err != nil {
		return 0, false
	}
	return f, true
}
