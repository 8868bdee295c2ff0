package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/japaniel/conlangdb/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveLanguageUnknown(t *testing.T) {
	conn := setupDB(t)
	r := New(conn, zap.NewNop())

	_, err := r.ResolveLanguage(context.Background(), "Dothraki")
	require.Error(t, err)

	var unknown *UnknownReferenceError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, KindLanguage, unknown.Kind)
	assert.Equal(t, "Dothraki", unknown.Key)
	assert.Equal(t, `unknown language "Dothraki"`, err.Error())

	// No placeholder language is created.
	assert.Equal(t, 0, countRows(t, conn, "LangInfo"))
}

func TestResolveLanguageCachesID(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()
	require.NoError(t, db.InsertRow(ctx, conn, "LangInfo", []string{"LangName"}, []any{"Sindarin"}))

	r := New(conn, nil)
	id1, err := r.ResolveLanguage(ctx, "Sindarin")
	require.NoError(t, err)

	// Once resolved, the id survives even if the store changes underneath.
	_, err = conn.Exec(`DELETE FROM LangInfo`)
	require.NoError(t, err)

	id2, err := r.ResolveLanguage(ctx, "Sindarin")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, r.Cache().Len(KindLanguage))
}

func TestResolveFeature(t *testing.T) {
	conn := setupDB(t)
	features := seedBank(t, conn)
	r := New(conn, nil)
	ctx := context.Background()

	id, ok, err := r.ResolveFeature(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, id)

	_, ok, err = r.ResolveFeature(ctx, "Clicky")
	require.NoError(t, err)
	assert.False(t, ok, "absent feature is not an error")
	assert.Equal(t, 0, r.Cache().Len(KindFeature), "misses are not cached")

	id, ok, err = r.ResolveFeature(ctx, "Plosive")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, features["Plosive"], id)
}

func TestRegistrarFindOrCreateIsIdempotent(t *testing.T) {
	conn := setupDB(t)
	r := New(conn, nil)
	ctx := context.Background()

	id1, err := r.Registrar().FindOrCreate(ctx, "Retroflex")
	require.NoError(t, err)
	id2, err := r.Registrar().FindOrCreate(ctx, "Retroflex")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	// A fresh resolver (empty cache) finds the existing row instead of adding one.
	id3, err := New(conn, nil).Registrar().FindOrCreate(ctx, "Retroflex")
	require.NoError(t, err)
	assert.Equal(t, id1, id3)
	assert.Equal(t, 1, countRows(t, conn, "PhonemeFeature"))

	_, err = r.Registrar().FindOrCreate(ctx, " ")
	assert.Error(t, err)
}

func TestResolvePhonemeSeeded(t *testing.T) {
	conn := setupDB(t)
	seedBank(t, conn)
	r := New(conn, nil)

	id, err := r.ResolvePhoneme(context.Background(), "p")
	require.NoError(t, err)
	want, _, err := db.LookupPhonemeID(context.Background(), conn, "p")
	require.NoError(t, err)
	assert.Equal(t, want, id)
	assert.Equal(t, 14, countRows(t, conn, "PhonemeBank"))
}

func TestResolvePhonemeCreatesOncePerRun(t *testing.T) {
	conn := setupDB(t)
	seedBank(t, conn)
	r := New(conn, nil)
	ctx := context.Background()

	before := countRows(t, conn, "PhonemeBank")
	var first int64
	for i := 0; i < 50; i++ {
		id, err := r.ResolvePhoneme(ctx, "ai")
		require.NoError(t, err)
		if i == 0 {
			first = id
		}
		assert.Equal(t, first, id)
	}
	assert.Equal(t, before+1, countRows(t, conn, "PhonemeBank"))

	// A later run reuses the inferred record rather than re-classifying it.
	id, err := New(conn, nil).ResolvePhoneme(ctx, "ai")
	require.NoError(t, err)
	assert.Equal(t, first, id)
	assert.Equal(t, before+1, countRows(t, conn, "PhonemeBank"))
}

func TestResolvePhonemeEmpty(t *testing.T) {
	conn := setupDB(t)
	_, err := New(conn, nil).ResolvePhoneme(context.Background(), "")
	assert.Error(t, err)
}
