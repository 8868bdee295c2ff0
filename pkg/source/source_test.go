package source

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, table, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, table+".csv"), []byte(content), 0o644))
}

func readAll(t *testing.T, r *Reader) []*Row {
	t.Helper()
	var rows []*Row
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		line string
		want rune
	}{
		{"LangName,Creator,World", ','},
		{"LangName;Creator;World", ';'},
		{"LangName\tCreator\tWorld", '\t'},
		{"LangName|Creator|World", '|'},
		{"LangName", ','},
		{"a;b;c,d", ';'},
		{"a,b;c", ','},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(Sniff(tt.line)), tt.line)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(t.TempDir(), "Lexicon")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "Lexicon", "")
	_, err := Open(dir, "Lexicon")
	assert.Error(t, err)
}

func TestReadRowsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "Lexicon", "\xEF\xBB\xBFLangID ; Word;IPA\nSindarin;mellon;ˈmɛlːɔn\nSindarin;\"a;b\";\nQuenya;elen\n")

	r, err := Open(dir, "Lexicon")
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, ';', r.Delimiter)
	assert.Equal(t, []string{"LangID", "Word", "IPA"}, r.Header())

	rows := readAll(t, r)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Line)
	v, ok := rows[0].Get("Word")
	assert.True(t, ok)
	assert.Equal(t, "mellon", v)

	v, _ = rows[1].Get("Word")
	assert.Equal(t, "a;b", v, "quoted delimiter stays in the field")

	// Short rows are padded.
	v, ok = rows[2].Get("IPA")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, 4, rows[2].Line)
}

func TestReadTooManyFields(t *testing.T) {
	r, err := NewReader(strings.NewReader("a,b\n1,2,3\n"), "inline")
	require.NoError(t, err)
	_, err = r.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, csv.ErrFieldCount)
	var pe *csv.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.StartLine)
	assert.Contains(t, err.Error(), "inline")
	assert.NoError(t, r.Close())
}

func TestSkipsInitialSpace(t *testing.T) {
	tests := []struct {
		line  string
		delim rune
		want  bool
	}{
		{"LangID, PhonemeID", ',', true},
		{"LangID, PhonemeID, Romanization\r", ',', true},
		{"LangID,PhonemeID", ',', false},
		{"LangID ; Word;IPA", ';', false},
		{"LangName", ',', false},
		{"LangID\t PhonemeID", '\t', false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SkipsInitialSpace(tt.line, tt.delim), "%q", tt.line)
	}
}

func TestReadSpaceAfterDelimiter(t *testing.T) {
	r, err := NewReader(strings.NewReader("LangID, PhonemeID, Notes\nSindarin, p, \" quoted\"\nQuenya,t,\n"), "inline")
	require.NoError(t, err)
	defer r.Close()
	assert.True(t, r.SkipInitialSpace)
	assert.Equal(t, []string{"LangID", "PhonemeID", "Notes"}, r.Header())

	rows := readAll(t, r)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Sindarin", "p", " quoted"}, rows[0].Values)
	assert.Equal(t, []string{"Quenya", "t", ""}, rows[1].Values)
}

func TestHeaderOnlyNoTrailingNewline(t *testing.T) {
	r, err := NewReader(strings.NewReader("LangName\tCreator"), "inline")
	require.NoError(t, err)
	assert.Equal(t, '\t', r.Delimiter)
	assert.Equal(t, []string{"LangName", "Creator"}, r.Header())
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRowDropDoesNotAliasHeader(t *testing.T) {
	r, err := NewReader(strings.NewReader("ID,LangID,Word\n1,Sindarin,mellon\n2,Sindarin,galadh\n"), "inline")
	require.NoError(t, err)

	first, err := r.Next()
	require.NoError(t, err)
	first.Drop("ID")
	first.Drop("Missing")
	assert.Equal(t, []string{"LangID", "Word"}, first.Columns)
	assert.Equal(t, []string{"Sindarin", "mellon"}, first.Values)
	assert.False(t, first.Has("ID"))

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "LangID", "Word"}, second.Columns)
	assert.Equal(t, map[string]string{"ID": "2", "LangID": "Sindarin", "Word": "galadh"}, second.Map())
	assert.Equal(t, []string{"ID", "LangID", "Word"}, r.Header())
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "LangInfo.csv"), Path("data", "LangInfo"))
}
