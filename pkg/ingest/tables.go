package ingest

import (
	"sort"

	"github.com/japaniel/conlangdb/pkg/resolve"
)

// Anchor tables are ingested before every other table.
const (
	LanguageTable = "LangInfo"
	FeatureTable  = "PhonemeFeature"
	BankTable     = "PhonemeBank"
)

// Ref is a column whose CSV value is a natural key to be replaced by a surrogate id.
type Ref struct {
	Column string
	Kind   resolve.Kind
}

// Table describes how rows of one table are transformed before insertion.
type Table struct {
	Name string
	// Key is the table's own surrogate key column; it is dropped from every row.
	Key string
	// Refs are resolved in order.
	Refs []Ref
	// SeedOnly tables are filled by the seed bank and never read from CSV.
	SeedOnly bool
}

var registry = map[string]Table{
	LanguageTable: {Name: LanguageTable, Key: "LangID"},
	FeatureTable:  {Name: FeatureTable, Key: "ID"},
	BankTable:     {Name: BankTable, Key: "PhonemeID", SeedOnly: true},
	"Inspiration": {Name: "Inspiration", Key: "ID", Refs: []Ref{
		{Column: "PhonologyFeature", Kind: resolve.KindFeature},
		{Column: "LangID", Kind: resolve.KindLanguage},
	}},
	"Phonology": {Name: "Phonology", Key: "ID", Refs: []Ref{
		{Column: "PhonemeID", Kind: resolve.KindPhoneme},
		{Column: "LangID", Kind: resolve.KindLanguage},
	}},
}

// Describe returns the descriptor for name. Tables without an entry of their
// own drop ID and resolve LangID by language name.
func Describe(name string) Table {
	if t, ok := registry[name]; ok {
		return t
	}
	return Table{Name: name, Key: "ID", Refs: []Ref{{Column: "LangID", Kind: resolve.KindLanguage}}}
}

// Order returns the tables to ingest: the language and feature registries
// first, then the rest in lexicographic order. Each table appears once and
// seed-only tables are left out.
func Order(tables []string) []string {
	rest := make([]string, 0, len(tables))
	rest = append(rest, tables...)
	sort.Strings(rest)

	ordered := append([]string{LanguageTable, FeatureTable}, rest...)
	seen := make(map[string]bool, len(ordered))
	out := ordered[:0]
	for _, t := range ordered {
		if seen[t] || Describe(t).SeedOnly {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
