// Package resolve translates the natural keys found in CSV sources (language
// names, feature names, IPA strings) into surrogate ids, synthesizing phoneme
// records for IPA strings the store has never seen.
//
// A Resolver is the per-run context: it owns the run's Cache, its Registrar
// and its Classifier, and must be used from a single goroutine.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/japaniel/conlangdb/pkg/db"
	"go.uber.org/zap"
)

// Resolver resolves natural keys to surrogate ids through a cache, falling
// back to the store and, for phonemes, to the Classifier.
type Resolver struct {
	db         db.DBExecutor
	cache      *Cache
	log        *zap.Logger
	registrar  *Registrar
	classifier *Classifier
}

// New returns a Resolver with an empty cache.
func New(conn db.DBExecutor, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		db:    conn,
		cache: NewCache(),
		log:   logger,
	}
	r.registrar = &Registrar{resolver: r}
	r.classifier = &Classifier{db: conn, features: r.registrar, log: logger}
	return r
}

// Cache exposes the run's cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// Registrar returns the feature registrar bound to this resolver.
func (r *Resolver) Registrar() *Registrar { return r.registrar }

// Classifier returns the phoneme classifier bound to this resolver.
func (r *Resolver) Classifier() *Classifier { return r.classifier }

// ResolveLanguage returns the LangID for name. Languages are never created
// here: an unknown name yields *UnknownReferenceError.
func (r *Resolver) ResolveLanguage(ctx context.Context, name string) (int64, error) {
	if id, ok := r.cache.Get(KindLanguage, name); ok {
		return id, nil
	}
	r.log.Debug("Looking up language", zap.String("name", name))
	id, ok, err := db.LookupLanguageID(ctx, r.db, name)
	if err != nil {
		return 0, fmt.Errorf("lookup language %q: %w", name, err)
	}
	if !ok {
		return 0, &UnknownReferenceError{Kind: KindLanguage, Key: name}
	}
	r.cache.Put(KindLanguage, name, id)
	return id, nil
}

// ResolveFeature returns the id of the named feature. An empty name means
// "no feature" and, like a name absent from the store, yields ok == false.
func (r *Resolver) ResolveFeature(ctx context.Context, name string) (id int64, ok bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, nil
	}
	if id, ok := r.cache.Get(KindFeature, name); ok {
		return id, true, nil
	}
	r.log.Debug("Looking up feature", zap.String("name", name))
	id, ok, err = db.LookupFeatureID(ctx, r.db, name)
	if err != nil {
		return 0, false, fmt.Errorf("lookup feature %q: %w", name, err)
	}
	if !ok {
		return 0, false, nil
	}
	r.cache.Put(KindFeature, name, id)
	return id, true, nil
}

// ResolvePhoneme returns the PhonemeID of an exact IPA string, asking the
// Classifier to create the record when the store has none.
func (r *Resolver) ResolvePhoneme(ctx context.Context, ipa string) (int64, error) {
	if ipa == "" {
		return 0, fmt.Errorf("phoneme must be non-empty")
	}
	if id, ok := r.cache.Get(KindPhoneme, ipa); ok {
		return id, nil
	}
	r.log.Debug("Looking up phoneme", zap.String("ipa", ipa))
	id, ok, err := db.LookupPhonemeID(ctx, r.db, ipa)
	if err != nil {
		return 0, fmt.Errorf("lookup phoneme %q: %w", ipa, err)
	}
	if !ok {
		id, err = r.classifier.Classify(ctx, ipa)
		if err != nil {
			return 0, err
		}
	}
	r.cache.Put(KindPhoneme, ipa, id)
	return id, nil
}
