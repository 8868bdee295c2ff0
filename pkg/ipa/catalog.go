package ipa

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind is the discriminant of a catalog entry.
type Kind string

const (
	KindVowel          Kind = "vowel"
	KindConsonant      Kind = "consonant"
	KindDiacritic      Kind = "diacritic"
	KindSuprasegmental Kind = "suprasegmental"
	KindTone           Kind = "tone"
)

// Entry is one IPA symbol of the seed catalog. Which descriptor fields are
// set depends on Kind.
type Entry struct {
	IPA  string `yaml:"ipa"`
	Kind Kind   `yaml:"kind"`
	// Name is the descriptive name of a mark, including its category suffix
	// (e.g. "nasalized diacritic").
	Name string `yaml:"name,omitempty"`

	Height    string `yaml:"height,omitempty"`
	Backness  string `yaml:"backness,omitempty"`
	Roundness string `yaml:"roundness,omitempty"`

	Voicing string `yaml:"voicing,omitempty"`
	Place   string `yaml:"place,omitempty"`
	// Manner is a space-separated descriptor sequence, e.g. "ejective plosive".
	Manner string `yaml:"manner,omitempty"`

	Modifiers []string `yaml:"modifiers,omitempty"`
}

// Catalog is an enumerable inventory of IPA symbols.
type Catalog struct {
	Entries []Entry `yaml:"entries"`
}

//go:embed catalog.yaml
var defaultCatalog []byte

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog from path. An empty path selects the embedded catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, e := range c.Entries {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return &c, nil
}

func (e Entry) validate() error {
	if e.IPA == "" {
		return fmt.Errorf("ipa must be non-empty")
	}
	switch e.Kind {
	case KindVowel:
		if e.Backness == "" {
			return fmt.Errorf("vowel %q: backness is required", e.IPA)
		}
	case KindConsonant:
		if e.Manner == "" {
			return fmt.Errorf("consonant %q: manner is required", e.IPA)
		}
	case KindDiacritic, KindSuprasegmental, KindTone:
		if e.Name == "" {
			return fmt.Errorf("%s %q: name is required", e.Kind, e.IPA)
		}
	default:
		return fmt.Errorf("%q: unknown kind %q", e.IPA, e.Kind)
	}
	return nil
}

// IsMark reports whether the entry modifies a preceding phone.
func (e Entry) IsMark() bool {
	return e.Kind == KindDiacritic || e.Kind == KindSuprasegmental || e.Kind == KindTone
}
