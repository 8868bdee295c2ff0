package graph

import (
	"strconv"
	"strings"
)

// Statement is one parameterized Cypher statement.
type Statement struct {
	Cypher string
	Params map[string]any
}

// Constraints returns the uniqueness constraints the mirror relies on.
func Constraints() []Statement {
	keys := []struct{ name, label, prop string }{
		{"LangInfo_Name", "LangInfo", "Name"},
		{"PhonemeFeature_Name", "PhonemeFeature", "Name"},
		{"Phoneme_IPA", "Phoneme", "IPA"},
		{"MorphoSyntax_WordOrder", "WordOrder", "Order"},
		{"MorphoSyntax_PluralCount", "PluralCount", "Count"},
		{"MorphoSyntax_CaseCount", "CaseCount", "Count"},
		{"MorphoSyntax_AdjectiveBeforeNoun", "AdjectiveBeforeNoun", "Value"},
		{"MorphoSyntax_AdjectiveAfterNoun", "AdjectiveAfterNoun", "Value"},
		{"MorphoSyntax_AdjectiveAgreement", "AdjectiveAgreement", "Value"},
	}
	out := make([]Statement, 0, len(keys))
	for _, s := range keys {
		out = append(out, Statement{
			Cypher: "CREATE CONSTRAINT " + s.name + " IF NOT EXISTS FOR (n:" + s.label + ") REQUIRE n." + s.prop + " IS UNIQUE",
		})
	}
	return out
}

// morphoAttr maps a MorphoSyntax column to its value node.
type morphoAttr struct {
	column string
	label  string
	prop   string
	rel    string
	parse  func(string) any
}

var morphoAttrs = []morphoAttr{
	{"WordOrder", "WordOrder", "Order", "WORD_ORDER", nullable},
	{"PluralCount", "PluralCount", "Count", "PLURAL_COUNT", parseInt},
	{"CaseCount", "CaseCount", "Count", "CASE_COUNT", parseInt},
	{"AdjectiveBeforeNoun", "AdjectiveBeforeNoun", "Value", "ADJ_BEFORE_NOUN", parseBool},
	{"AdjectiveAfterNoun", "AdjectiveAfterNoun", "Value", "ADJ_AFTER_NOUN", parseBool},
	{"AdjectiveAgreement", "AdjectiveAgreement", "Value", "ADJ_AGREEMENT", parseBool},
}

// Project turns one CSV row into the statements that mirror it. Nodes are
// keyed by natural identifiers only. ok is false when the table has no
// projection or the row lacks the key it needs.
func Project(table string, row map[string]string) (stmts []Statement, ok bool) {
	get := func(col string) string { return strings.TrimSpace(row[col]) }

	switch table {
	case "LangInfo":
		name := get("LangName")
		if name == "" {
			return nil, false
		}
		return []Statement{{
			Cypher: `MERGE (l:LangInfo {Name: $name})
SET l.Creator = $creator,
    l.World = $world,
    l.Spoken = $spoken,
    l.Written = $written,
    l.Usage = $usage,
    l.Description = $description`,
			Params: map[string]any{
				"name":        name,
				"creator":     nullable(get("Creator")),
				"world":       nullable(get("World")),
				"spoken":      parseBool(get("Spoken")),
				"written":     parseBool(get("Written")),
				"usage":       nullable(get("Usage")),
				"description": nullable(get("Description")),
			},
		}}, true

	case "PhonemeFeature":
		name := get("Name")
		if name == "" {
			return nil, false
		}
		return []Statement{{
			Cypher: `MERGE (f:PhonemeFeature {Name: $name})`,
			Params: map[string]any{"name": name},
		}}, true

	case "MorphoSyntax":
		lang := get("LangID")
		if lang == "" {
			return nil, false
		}
		for _, a := range morphoAttrs {
			v := a.parse(get(a.column))
			if v == nil {
				continue
			}
			stmts = append(stmts, Statement{
				Cypher: "MERGE (l:LangInfo {Name: $lang})\n" +
					"MERGE (v:" + a.label + " {" + a.prop + ": $value})\n" +
					"MERGE (l)-[r:" + a.rel + "]->(v)\n" +
					`SET r.type = "MorphoSyntax"`,
				Params: map[string]any{"lang": lang, "value": v},
			})
		}
		return stmts, len(stmts) > 0

	case "Prosody":
		lang := get("LangID")
		if lang == "" {
			return nil, false
		}
		return []Statement{{
			Cypher: `MERGE (l:LangInfo {Name: $lang})
SET l.StressPattern = $stress,
    l.SyllableStructure = $syllable,
    l.Tonal = $tonal,
    l.ProsodyNotes = $notes`,
			Params: map[string]any{
				"lang":     lang,
				"stress":   nullable(get("StressPattern")),
				"syllable": nullable(get("SyllableStructure")),
				"tonal":    parseBool(get("Tonal")),
				"notes":    nullable(get("Notes")),
			},
		}}, true

	case "Phonology":
		lang, ipa := get("LangID"), get("PhonemeID")
		if lang == "" || ipa == "" {
			return nil, false
		}
		return []Statement{{
			Cypher: `MERGE (l:LangInfo {Name: $lang})
MERGE (p:Phoneme {IPA: $ipa})
MERGE (l)-[r:HAS_PHONEME]->(p)
SET r.Romanization = $romanization,
    r.Notes = $notes`,
			Params: map[string]any{
				"lang":         lang,
				"ipa":          ipa,
				"romanization": nullable(get("Romanization")),
				"notes":        nullable(get("Notes")),
			},
		}}, true

	case "Inspiration":
		lang, feature := get("LangID"), get("PhonologyFeature")
		if lang == "" || feature == "" {
			return nil, false
		}
		return []Statement{{
			Cypher: `MERGE (l:LangInfo {Name: $lang})
MERGE (f:PhonemeFeature {Name: $feature})
MERGE (l)-[r:INSPIRED_BY {Source: $source}]->(f)
SET r.Notes = $notes`,
			Params: map[string]any{
				"lang":    lang,
				"feature": feature,
				"source":  get("Source"),
				"notes":   nullable(get("Notes")),
			},
		}}, true

	case "Lexicon":
		lang, word := get("LangID"), get("Word")
		if lang == "" || word == "" {
			return nil, false
		}
		// MERGE rejects null keys, so a missing part of speech is "".
		return []Statement{{
			Cypher: `MERGE (l:LangInfo {Name: $lang})
MERGE (w:Word {Text: $word, Language: $lang, PartOfSpeech: $pos})
SET w.IPA = $ipa,
    w.Translation = $translation
MERGE (l)-[:HAS_WORD]->(w)`,
			Params: map[string]any{
				"lang":        lang,
				"word":        word,
				"pos":         get("PartOfSpeech"),
				"ipa":         nullable(get("IPA")),
				"translation": nullable(get("Translation")),
			},
		}}, true
	}
	return nil, false
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseInt(s string) any {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return n
}

func parseBool(s string) any {
	switch strings.ToLower(s) {
	case "yes", "y":
		return true
	case "no", "n":
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return b
}
