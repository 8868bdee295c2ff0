package ingest

import "fmt"

// RowStatus is the outcome of one CSV row.
type RowStatus int

const (
	// Inserted rows were committed.
	Inserted RowStatus = iota
	// Skipped rows violated a table constraint (usually a duplicate).
	Skipped
	// Failed rows could not be prepared or written for any other reason,
	// e.g. an unknown language.
	Failed
)

func (s RowStatus) String() string {
	switch s {
	case Inserted:
		return "inserted"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("RowStatus(%d)", int(s))
}

// RowResult records what happened to the row starting at Line.
type RowResult struct {
	Line   int
	Status RowStatus
	Err    error
}

// TableReport collects the results of one table.
type TableReport struct {
	Table  string
	Source string
	// Missing is set when the table had no row source and was skipped.
	Missing bool
	Results []RowResult
}

// Count returns the number of rows with status s.
func (t TableReport) Count(s RowStatus) int {
	n := 0
	for _, r := range t.Results {
		if r.Status == s {
			n++
		}
	}
	return n
}

// Report is the outcome of an ingestion run, one entry per table in the
// order the tables were processed.
type Report struct {
	Tables []TableReport
}

// Table returns the report for name.
func (r Report) Table(name string) (TableReport, bool) {
	for _, t := range r.Tables {
		if t.Table == name {
			return t, true
		}
	}
	return TableReport{}, false
}

// Count sums the rows with status s over all tables.
func (r Report) Count(s RowStatus) int {
	n := 0
	for _, t := range r.Tables {
		n += t.Count(s)
	}
	return n
}
