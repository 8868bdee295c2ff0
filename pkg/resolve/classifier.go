package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/japaniel/conlangdb/pkg/db"
	"github.com/japaniel/conlangdb/pkg/ipa"
	"go.uber.org/zap"
)

const (
	featureAffricate = "Affricate"
	featureDiphthong = "Diphthong"
)

// Inference is the type, modifier and feature the Classifier derives for an
// IPA string the store does not know.
type Inference struct {
	Type      db.PhonemeType
	Modifiers string
	FeatureID int64
}

// Classifier synthesizes phoneme records for unseen IPA strings from the
// records of their last two decomposed code points. It is a best-effort
// heuristic for "phone + mark" and two-phone clusters, not a parser: it never
// looks further than two code points back.
type Classifier struct {
	db       db.DBExecutor
	features *Registrar
	log      *zap.Logger
}

// phoneContext is what the classifier knows about one code point.
type phoneContext struct {
	Type      db.PhonemeType
	Modifiers string
	FeatureID int64
}

var unknownContext = phoneContext{Type: db.TypeUnknown}

// Infer derives the record for s without inserting it. Feature names it
// produces are registered through the Registrar.
func (c *Classifier) Infer(ctx context.Context, s string) (Inference, error) {
	points := ipa.Decompose(s)
	if len(points) < 2 {
		return Inference{Type: db.TypeUnknown}, nil
	}
	base := points[len(points)-2]

	right, err := c.lookup(ctx, points[len(points)-1])
	if err != nil {
		return Inference{}, err
	}
	left, err := c.lookup(ctx, base)
	if err != nil {
		return Inference{}, err
	}

	var (
		inf     Inference
		feature string
	)
	switch {
	case right.Type.IsMark():
		// A phone keeps its category and absorbs the mark's description.
		inf = Inference{Type: left.Type, Modifiers: right.Modifiers, FeatureID: right.FeatureID}
	case left.Type == right.Type:
		inf.Type = left.Type
		switch left.Type {
		case db.TypeConsonant:
			// t/d + consonant: affricates spelled without the tie bar.
			if base == "t" || base == "d" {
				feature = featureAffricate
			} else {
				inf.FeatureID = left.FeatureID
			}
		case db.TypeVowel:
			feature = featureDiphthong
		}
	default:
		inf.Type = db.TypeVowel
		feature = featureDiphthong
	}

	if feature != "" {
		id, err := c.features.FindOrCreate(ctx, feature)
		if err != nil {
			return Inference{}, err
		}
		inf.FeatureID = id
	}
	return inf, nil
}

// Classify infers and inserts a record for s and returns the id the store
// assigned to it.
func (c *Classifier) Classify(ctx context.Context, s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("phoneme must be non-empty")
	}
	inf, err := c.Infer(ctx, s)
	if err != nil {
		return 0, fmt.Errorf("classify %q: %w", s, err)
	}

	_, insertErr := db.InsertPhoneme(ctx, c.db, db.Phoneme{
		IPA:       s,
		Type:      inf.Type,
		Modifiers: inf.Modifiers,
		FeatureID: inf.FeatureID,
	})
	if insertErr != nil && !errors.Is(insertErr, db.ErrSchemaViolation) {
		return 0, insertErr
	}

	id, ok, err := db.LookupPhonemeID(ctx, c.db, s)
	if err != nil {
		return 0, fmt.Errorf("lookup phoneme %q: %w", s, err)
	}
	if !ok {
		if insertErr != nil {
			return 0, insertErr
		}
		return 0, fmt.Errorf("phoneme %q missing after insert", s)
	}
	c.log.Info("Inserted inferred phoneme",
		zap.String("ipa", s),
		zap.String("type", string(inf.Type)),
		zap.String("modifiers", inf.Modifiers),
		zap.Int64("feature", inf.FeatureID),
		zap.Int64("id", id),
	)
	return id, nil
}

func (c *Classifier) lookup(ctx context.Context, point string) (phoneContext, error) {
	p, ok, err := db.LookupPhoneme(ctx, c.db, point)
	if err != nil {
		return phoneContext{}, fmt.Errorf("lookup phone %q: %w", point, err)
	}
	if !ok {
		return unknownContext, nil
	}
	return phoneContext{Type: p.Type, Modifiers: p.Modifiers, FeatureID: p.FeatureID}, nil
}
