package types

// Dataset is an in-memory batch snapshot: an ordered column list and rows
// of values aligned to it. Cell values are one of string, int64, float64,
// bool, time.Time, or nil (null).
//
// Components that "modify" a dataset (schema adaptation, repair) return a
// new Dataset and leave the input untouched.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// NewDataset returns an empty dataset with the given column order.
func NewDataset(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Columns: cols}
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column is present.
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// AppendRow appends one row. Short rows are padded with nulls so every row
// stays aligned to the column list.
func (d *Dataset) AppendRow(row []any) {
	for len(row) < len(d.Columns) {
		row = append(row, nil)
	}
	d.Rows = append(d.Rows, row[:len(d.Columns)])
}

// Column returns the values of the named column in row order, or nil if
// the column does not exist.
func (d *Dataset) Column(name string) []any {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	vals := make([]any, len(d.Rows))
	for i, row := range d.Rows {
		vals[i] = row[idx]
	}
	return vals
}

// Clone returns a deep copy of the dataset. Cell values are scalars and
// are copied by value.
func (d *Dataset) Clone() *Dataset {
	out := NewDataset(d.Columns)
	out.Rows = make([][]any, len(d.Rows))
	for i, row := range d.Rows {
		cp := make([]any, len(row))
		copy(cp, row)
		out.Rows[i] = cp
	}
	return out
}

// WithColumn returns a copy of the dataset with an extra column appended,
// every row filled with the given value. If the column already exists the
// copy is returned unchanged.
func (d *Dataset) WithColumn(name string, fill any) *Dataset {
	out := d.Clone()
	if out.HasColumn(name) {
		return out
	}
	out.Columns = append(out.Columns, name)
	for i := range out.Rows {
		out.Rows[i] = append(out.Rows[i], fill)
	}
	return out
}
