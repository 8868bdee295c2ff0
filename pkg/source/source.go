// Package source reads the per-table CSV files that feed ingestion.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrSourceUnavailable is returned by Open when a table has no readable file.
var ErrSourceUnavailable = errors.New("source unavailable")

// Delimiters are the field separators Open recognizes, in order of preference.
var Delimiters = []rune{',', ';', '\t', '|'}

var bom = []byte{0xEF, 0xBB, 0xBF}

// Path returns the file a table is read from.
func Path(dir, table string) string {
	return filepath.Join(dir, table+".csv")
}

// Reader yields the rows of one table's CSV file in file order.
type Reader struct {
	Path      string
	Delimiter rune
	// SkipInitialSpace is set when the header puts a space after each
	// delimiter; leading spaces are then dropped from every field.
	SkipInitialSpace bool

	f      *os.File
	r      *csv.Reader
	header []string
}

// Open opens <dir>/<table>.csv and reads its header. A missing or unreadable
// file is reported as ErrSourceUnavailable.
func Open(dir, table string) (*Reader, error) {
	path := Path(dir, table)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, table, err)
	}
	rd, err := newReader(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	rd.f = f
	return rd, nil
}

// NewReader reads CSV from r. name is used in error messages only.
func NewReader(r io.Reader, name string) (*Reader, error) {
	return newReader(r, name)
}

func newReader(r io.Reader, name string) (*Reader, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(bom)); err == nil && bytes.Equal(b, bom) {
		_, _ = br.Discard(len(bom))
	}
	first, err := peekLine(br)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	delim := Sniff(first)
	skip := SkipsInitialSpace(first, delim)

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.TrimLeadingSpace = skip
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return &Reader{Path: name, Delimiter: delim, SkipInitialSpace: skip, r: cr, header: header}, nil
}

// peekLine returns the first line without consuming it.
func peekLine(br *bufio.Reader) (string, error) {
	for n := 64; ; n *= 2 {
		b, err := br.Peek(n)
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			return string(b[:i]), nil
		}
		if err != nil {
			if len(b) == 0 {
				return "", fmt.Errorf("empty file")
			}
			// Single line without a trailing newline, or a line longer than the buffer.
			return string(b), nil
		}
	}
}

// Sniff picks the delimiter that occurs most often in the header line,
// preferring earlier entries of Delimiters on ties. A line with none of them
// is a single column and gets ','.
func Sniff(line string) rune {
	best, bestN := ',', 0
	for _, d := range Delimiters {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// SkipsInitialSpace reports whether line follows every delimiter with a
// space, as in "LangID, PhonemeID". Whitespace delimiters never qualify:
// trimming would swallow their empty fields.
func SkipsInitialSpace(line string, delim rune) bool {
	if delim == ' ' || delim == '\t' {
		return false
	}
	line = strings.TrimRight(line, "\r")
	n := strings.Count(line, string(delim))
	return n > 0 && strings.Count(line, string(delim)+" ") == n
}

// Header returns the trimmed column names.
func (r *Reader) Header() []string {
	return append([]string(nil), r.header...)
}

// Next returns the next row, or io.EOF after the last one. Rows shorter than
// the header are padded with empty values; a row wider than the header is a
// *csv.ParseError wrapping csv.ErrFieldCount. Reading may continue after
// either kind of *csv.ParseError.
func (r *Reader) Next() (*Row, error) {
	rec, err := r.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", r.Path, err)
	}
	line, _ := r.r.FieldPos(0)
	if len(rec) > len(r.header) {
		return nil, fmt.Errorf("%s: %w", r.Path, &csv.ParseError{StartLine: line, Line: line, Err: csv.ErrFieldCount})
	}
	row := &Row{Line: line, Columns: r.Header(), Values: make([]string, len(r.header))}
	copy(row.Values, rec)
	return row, nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}
