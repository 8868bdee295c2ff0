package source

// Row is one CSV record keyed by header column.
type Row struct {
	// Line is the 1-based line the record starts on.
	Line    int
	Columns []string
	Values  []string
}

// Index returns the position of col, or -1.
func (r *Row) Index(col string) int {
	for i, c := range r.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Get returns the value of col and whether the row has that column.
func (r *Row) Get(col string) (string, bool) {
	i := r.Index(col)
	if i < 0 {
		return "", false
	}
	return r.Values[i], true
}

// Has reports whether the row has col.
func (r *Row) Has(col string) bool {
	return r.Index(col) >= 0
}

// Drop removes col from the row; it is a no-op when absent.
func (r *Row) Drop(col string) {
	i := r.Index(col)
	if i < 0 {
		return
	}
	r.Columns = append(r.Columns[:i:i], r.Columns[i+1:]...)
	r.Values = append(r.Values[:i:i], r.Values[i+1:]...)
}

// Map returns the row as a column to value map.
func (r *Row) Map() map[string]string {
	m := make(map[string]string, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}
