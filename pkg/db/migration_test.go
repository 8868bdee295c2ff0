package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestInitDBCreatesSchema verifies InitDB creates every table the importer
// writes to, and that the phoneme bank carries its feature reference column.
func TestInitDBCreatesSchema(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, InitDB(conn, zap.NewNop()))

	tables, err := ListTables(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Inspiration", "LangInfo", "Lexicon", "MorphoSyntax",
		"PhonemeBank", "PhonemeFeature", "Phonology", "Prosody",
	}, tables)

	rows, err := conn.Query("PRAGMA table_info(PhonemeBank)")
	require.NoError(t, err)
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var colName, ctype string
		var notnull, pk int
		var dfltVal any
		require.NoError(t, rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk))
		cols[colName] = true
	}
	require.NoError(t, rows.Err())
	assert.True(t, cols["Feature"], "expected Feature column, got %v", cols)
	assert.True(t, cols["Modifiers"], "expected Modifiers column, got %v", cols)
}

func TestInitDBIsIdempotent(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, InitDB(conn, nil))
	require.NoError(t, InitDB(conn, nil))

	// The store must still be usable: migrate must not close the connection.
	require.NoError(t, conn.Ping())
}

func TestInitDBLogsSchemaVersion(t *testing.T) {
	conn, err := Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	require.NoError(t, InitDB(conn, zap.New(core)))

	applied := logs.FilterMessage("Applied migrations").All()
	require.Len(t, applied, 1)
	assert.Equal(t, uint64(2), applied[0].ContextMap()["version"])
	assert.Equal(t, false, applied[0].ContextMap()["dirty"])
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestNaturalKeysTreatNullAsOneValue(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	_, err := conn.Exec(`INSERT INTO LangInfo (LangName) VALUES ('Sindarin')`)
	require.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO Inspiration (LangID, PhonologyFeature, Source) VALUES (1, NULL, 'Welsh')`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO Inspiration (LangID, PhonologyFeature, Source) VALUES (1, NULL, 'Welsh')`)
	assert.True(t, IsConstraintErr(err), "got %v", err)
	_, err = conn.Exec(`INSERT INTO Inspiration (LangID, PhonologyFeature, Source) VALUES (1, NULL, 'Finnish')`)
	assert.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO Lexicon (LangID, Word) VALUES (1, 'mellon')`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO Lexicon (LangID, Word) VALUES (1, 'mellon')`)
	assert.True(t, IsConstraintErr(err), "got %v", err)
	_, err = conn.Exec(`INSERT INTO Lexicon (LangID, Word, PartOfSpeech) VALUES (1, 'mellon', 'noun')`)
	assert.NoError(t, err)
}

func TestOpenEnforcesForeignKeys(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	var on int
	require.NoError(t, conn.QueryRow("PRAGMA foreign_keys").Scan(&on))
	assert.Equal(t, 1, on)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/DB/conlangs.db"
	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, InitDB(conn, nil))
}
