package tabular

// Table is a fully loaded dataset. A dataset that was never written is the
// zero Table: no columns and no rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of col in the header, or -1.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(col string) bool { return t.Index(col) >= 0 }

// Record returns row i keyed by the header.
func (t *Table) Record(i int) Record {
	var r Record
	row := t.Rows[i]
	for j, c := range t.Columns {
		v := ""
		if j < len(row) {
			v = row[j]
		}
		r.Set(c, v)
	}
	return r
}

// Records returns every row keyed by the header.
func (t *Table) Records() []Record {
	out := make([]Record, t.Len())
	for i := range out {
		out[i] = t.Record(i)
	}
	return out
}

// Column returns the values of col in row order, or nil when col is unknown.
func (t *Table) Column(col string) []string {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// Filter returns a table with the same header and the rows keep accepts.
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for i, row := range t.Rows {
		if keep(t.Record(i)) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Project returns a table with only cols; unknown columns come back blank.
func (t *Table) Project(cols ...string) *Table {
	out := &Table{Columns: append([]string(nil), cols...)}
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
	}
	for _, row := range t.Rows {
		r := make([]string, len(cols))
		for i, j := range idx {
			if j >= 0 && j < len(row) {
				r[i] = row[j]
			}
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Find returns the index of the first row whose col equals value, or -1.
func (t *Table) Find(col, value string) int {
	idx := t.Index(col)
	if idx < 0 {
		return -1
	}
	for i, row := range t.Rows {
		if idx < len(row) && row[idx] == value {
			return i
		}
	}
	return -1
}

// rowFor lays rec out under the header by column name. Columns rec does not
// carry are blank.
func (t *Table) rowFor(rec Record) []string {
	row := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		row[i] = rec.Value(c)
	}
	return row
}

// widen appends any rec field the header lacks and pads existing rows.
func (t *Table) widen(rec Record) bool {
	grew := false
	for _, k := range rec.Keys() {
		if !t.HasColumn(k) {
			t.Columns = append(t.Columns, k)
			grew = true
		}
	}
	if grew {
		for i, row := range t.Rows {
			for len(row) < len(t.Columns) {
				row = append(row, "")
			}
			t.Rows[i] = row
		}
	}
	return grew
}
