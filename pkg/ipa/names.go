package ipa

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase upper-cases the first letter of every space- or hyphen-separated
// word and lower-cases the rest ("near-front" -> "Near-Front").
func TitleCase(s string) string {
	caser := cases.Title(language.English)
	var b strings.Builder
	start := 0
	for i, r := range s {
		if r == ' ' || r == '-' {
			b.WriteString(caser.String(s[start:i]))
			b.WriteRune(r)
			start = i + 1
		}
	}
	b.WriteString(caser.String(s[start:]))
	return b.String()
}

// VowelFeature names the feature of a vowel after its backness, title-cased
// with hyphens removed ("near-front" -> "NearFront").
func VowelFeature(backness string) string {
	return strings.ReplaceAll(TitleCase(strings.TrimSpace(backness)), "-", "")
}

// ConsonantFeature names the feature of a consonant after its manner: the
// last manner token, except that ejectives keep "Ejective".
func ConsonantFeature(manner string) string {
	tokens := strings.Fields(manner)
	if len(tokens) == 0 {
		return ""
	}
	for _, tok := range tokens {
		if strings.EqualFold(tok, "ejective") {
			return TitleCase(tok)
		}
	}
	return TitleCase(tokens[len(tokens)-1])
}

// MarkName strips the category suffix from a mark's descriptive name and
// title-cases the rest ("nasalized diacritic" -> "Nasalized").
func MarkName(name string, kind Kind) string {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, " "+string(kind)))
	return TitleCase(trimmed)
}

// Feature derives the feature name recorded for a catalog entry.
func (e Entry) Feature() string {
	switch e.Kind {
	case KindVowel:
		return VowelFeature(e.Backness)
	case KindConsonant:
		return ConsonantFeature(e.Manner)
	case KindDiacritic, KindSuprasegmental, KindTone:
		return MarkName(e.Name, e.Kind)
	}
	return ""
}
