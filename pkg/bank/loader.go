// Package bank seeds the PhonemeBank from an IPA catalog.
package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/japaniel/conlangdb/pkg/db"
	"github.com/japaniel/conlangdb/pkg/ipa"
	"github.com/japaniel/conlangdb/pkg/resolve"
	"go.uber.org/zap"
)

// Report summarizes one seeding pass.
type Report struct {
	Inserted   int
	Duplicates int
}

// Loader inserts catalog entries as seeded phonemes.
type Loader struct {
	conn      db.DBExecutor
	registrar *resolve.Registrar
	log       *zap.Logger
}

// NewLoader creates a loader that registers features through r.
func NewLoader(conn db.DBExecutor, r *resolve.Resolver, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{conn: conn, registrar: r.Registrar(), log: logger}
}

// Load inserts every catalog entry. Entries whose IPA string is already in the
// store are counted as duplicates, so re-seeding a populated store is harmless.
func (l *Loader) Load(ctx context.Context, c *ipa.Catalog) (Report, error) {
	var rep Report
	for _, e := range c.Entries {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		p, feature := Derive(e)
		if feature != "" {
			id, err := l.registrar.FindOrCreate(ctx, feature)
			if err != nil {
				return rep, fmt.Errorf("seed %q: %w", e.IPA, err)
			}
			p.FeatureID = id
		}

		if _, err := db.InsertPhoneme(ctx, l.conn, p); err != nil {
			if errors.Is(err, db.ErrSchemaViolation) {
				rep.Duplicates++
				l.log.Debug("Phoneme already seeded", zap.String("ipa", e.IPA))
				continue
			}
			return rep, fmt.Errorf("seed %q: %w", e.IPA, err)
		}
		rep.Inserted++
	}
	l.log.Info("Seeded phoneme bank",
		zap.Int("entries", len(c.Entries)),
		zap.Int("inserted", rep.Inserted),
		zap.Int("duplicates", rep.Duplicates),
	)
	return rep, nil
}

// Derive maps a catalog entry to its PhonemeBank row and the name of the
// feature it references. FeatureID is left for the caller to resolve.
func Derive(e ipa.Entry) (db.Phoneme, string) {
	p := db.Phoneme{IPA: e.IPA, Modifiers: strings.Join(e.Modifiers, " ")}
	switch e.Kind {
	case ipa.KindVowel:
		p.Type = db.TypeVowel
		p.VowelHeight = e.Height
		p.VowelBackness = e.Backness
		p.VowelRoundness = e.Roundness
	case ipa.KindConsonant:
		p.Type = db.TypeConsonant
		p.ConsonantVoiced = strings.EqualFold(e.Voicing, "voiced")
		p.ConsonantManner = e.Manner
		p.ConsonantPlace = e.Place
	case ipa.KindDiacritic:
		p.Type = db.TypeDiacritic
	case ipa.KindSuprasegmental:
		p.Type = db.TypeSuprasegmental
	case ipa.KindTone:
		p.Type = db.TypeTone
	default:
		p.Type = db.TypeUnknown
	}
	feature := e.Feature()
	if e.IsMark() && p.Modifiers == "" {
		// A mark's modifier is the description it lends to the phone it follows.
		p.Modifiers = feature
	}
	return p, feature
}
