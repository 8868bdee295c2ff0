package db

// PhonemeType is the phonemic category stored in PhonemeBank.Type.
type PhonemeType string

const (
	TypeVowel          PhonemeType = "Vowel"
	TypeConsonant      PhonemeType = "Consonant"
	TypeDiacritic      PhonemeType = "Diacritic"
	TypeSuprasegmental PhonemeType = "Suprasegmental"
	TypeTone           PhonemeType = "Tone"
	TypeUnknown        PhonemeType = "Unknown"
)

// IsMark reports whether t is a category that modifies a preceding phone.
func (t PhonemeType) IsMark() bool {
	return t == TypeDiacritic || t == TypeSuprasegmental || t == TypeTone
}

// Phoneme is a PhonemeBank row. Empty strings and a zero FeatureID are stored as NULL.
type Phoneme struct {
	ID   int64
	IPA  string
	Type PhonemeType

	VowelHeight    string
	VowelBackness  string
	VowelRoundness string

	// ConsonantVoiced is only meaningful when Type is TypeConsonant.
	ConsonantVoiced bool
	ConsonantManner string
	ConsonantPlace  string

	Modifiers string
	FeatureID int64
}
