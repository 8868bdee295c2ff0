package resolve

import (
	"context"
	"database/sql"
	"testing"

	"github.com/japaniel/conlangdb/pkg/db"
	"github.com/stretchr/testify/require"
)

const nasalTilde = "\u0303"

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitDB(conn, nil))
	t.Cleanup(func() { conn.Close() })
	return conn
}

// seedBank inserts a small phoneme inventory and returns feature ids by name.
func seedBank(t *testing.T, conn *sql.DB) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	features := map[string]int64{}
	for _, name := range []string{"Plosive", "Fricative", "Nasal", "Front", "Back", "Nasalized", "Long", "Extra-High Level"} {
		require.NoError(t, db.InsertFeature(ctx, conn, name))
		id, ok, err := db.LookupFeatureID(ctx, conn, name)
		require.NoError(t, err)
		require.True(t, ok)
		features[name] = id
	}

	phonemes := []db.Phoneme{
		{IPA: "p", Type: db.TypeConsonant, ConsonantManner: "plosive", ConsonantPlace: "bilabial", FeatureID: features["Plosive"]},
		{IPA: "t", Type: db.TypeConsonant, ConsonantManner: "plosive", ConsonantPlace: "alveolar", FeatureID: features["Plosive"]},
		{IPA: "d", Type: db.TypeConsonant, ConsonantVoiced: true, ConsonantManner: "plosive", ConsonantPlace: "alveolar", FeatureID: features["Plosive"]},
		{IPA: "k", Type: db.TypeConsonant, ConsonantManner: "plosive", ConsonantPlace: "velar", FeatureID: features["Plosive"]},
		{IPA: "x", Type: db.TypeConsonant, ConsonantManner: "non-sibilant fricative", ConsonantPlace: "velar", FeatureID: features["Fricative"]},
		{IPA: "ʃ", Type: db.TypeConsonant, ConsonantManner: "sibilant fricative", ConsonantPlace: "palato-alveolar", FeatureID: features["Fricative"]},
		{IPA: "ʒ", Type: db.TypeConsonant, ConsonantVoiced: true, ConsonantManner: "sibilant fricative", ConsonantPlace: "palato-alveolar", FeatureID: features["Fricative"]},
		{IPA: "n", Type: db.TypeConsonant, ConsonantVoiced: true, ConsonantManner: "nasal", ConsonantPlace: "alveolar", FeatureID: features["Nasal"]},
		{IPA: "a", Type: db.TypeVowel, VowelHeight: "open", VowelBackness: "front", VowelRoundness: "unrounded", FeatureID: features["Front"]},
		{IPA: "i", Type: db.TypeVowel, VowelHeight: "close", VowelBackness: "front", VowelRoundness: "unrounded", FeatureID: features["Front"]},
		{IPA: "u", Type: db.TypeVowel, VowelHeight: "close", VowelBackness: "back", VowelRoundness: "rounded", FeatureID: features["Back"]},
		{IPA: nasalTilde, Type: db.TypeDiacritic, Modifiers: "Nasalized", FeatureID: features["Nasalized"]},
		{IPA: "ː", Type: db.TypeSuprasegmental, Modifiers: "Long", FeatureID: features["Long"]},
		{IPA: "˥", Type: db.TypeTone, Modifiers: "Extra-High Level", FeatureID: features["Extra-High Level"]},
	}
	for _, p := range phonemes {
		_, err := db.InsertPhoneme(ctx, conn, p)
		require.NoError(t, err)
	}
	return features
}

func countRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()
	n, err := db.CountRows(context.Background(), conn, table)
	require.NoError(t, err)
	return n
}
