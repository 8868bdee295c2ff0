package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// DBExecutor is the query surface shared by *sql.DB and *sql.Tx, so store
// helpers run the same inside and outside a row transaction.
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrSchemaViolation marks an insert rejected by a uniqueness, foreign-key or
// other table constraint.
var ErrSchemaViolation = errors.New("schema violation")

// IsConstraintErr reports whether err is ErrSchemaViolation or a SQLite
// constraint failure (unique, foreign key, NOT NULL or CHECK).
func IsConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSchemaViolation) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// classify wraps constraint failures with ErrSchemaViolation.
func classify(err error) error {
	if err != nil && IsConstraintErr(err) && !errors.Is(err, ErrSchemaViolation) {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}
	return err
}

// LookupLanguageID returns the LangID for name; ok is false when no such language exists.
func LookupLanguageID(ctx context.Context, db DBExecutor, name string) (id int64, ok bool, err error) {
	return lookupID(ctx, db, `SELECT LangID FROM LangInfo WHERE LangName = ?`, name)
}

// LookupFeatureID returns the PhonemeFeature id for name; ok is false when absent.
func LookupFeatureID(ctx context.Context, db DBExecutor, name string) (id int64, ok bool, err error) {
	return lookupID(ctx, db, `SELECT ID FROM PhonemeFeature WHERE Name = ?`, name)
}

// LookupPhonemeID returns the PhonemeID for an exact IPA string; ok is false when absent.
func LookupPhonemeID(ctx context.Context, db DBExecutor, ipa string) (id int64, ok bool, err error) {
	return lookupID(ctx, db, `SELECT PhonemeID FROM PhonemeBank WHERE IPA = ?`, ipa)
}

func lookupID(ctx context.Context, db DBExecutor, query, key string) (int64, bool, error) {
	var id int64
	err := db.QueryRowContext(ctx, query, key).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// LookupPhoneme returns the full PhonemeBank row for an exact IPA string.
func LookupPhoneme(ctx context.Context, db DBExecutor, ipa string) (Phoneme, bool, error) {
	var (
		p                           Phoneme
		typ                         string
		height, backness, roundness sql.NullString
		voicing                     sql.NullInt64
		manner, place, modifiers    sql.NullString
		feature                     sql.NullInt64
	)
	err := db.QueryRowContext(ctx, `SELECT PhonemeID, IPA, Type, Vowel_Height, Vowel_Backness, Vowel_Roundness,
		Consonant_Voicing, Consonant_ArticulationManner, Consonant_ArticulationPlace, Modifiers, Feature
		FROM PhonemeBank WHERE IPA = ?`, ipa).Scan(
		&p.ID, &p.IPA, &typ, &height, &backness, &roundness,
		&voicing, &manner, &place, &modifiers, &feature,
	)
	if err == sql.ErrNoRows {
		return Phoneme{}, false, nil
	}
	if err != nil {
		return Phoneme{}, false, err
	}
	p.Type = PhonemeType(typ)
	p.VowelHeight = height.String
	p.VowelBackness = backness.String
	p.VowelRoundness = roundness.String
	p.ConsonantVoiced = voicing.Valid && voicing.Int64 == 1
	p.ConsonantManner = manner.String
	p.ConsonantPlace = place.String
	p.Modifiers = modifiers.String
	p.FeatureID = feature.Int64
	return p, true, nil
}

// InsertFeature inserts a PhonemeFeature row. A concurrent insert of the same
// name is not an error: callers re-query by name.
func InsertFeature(ctx context.Context, db DBExecutor, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("feature name must be non-empty")
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO PhonemeFeature (Name) VALUES (?)`, trimmed); err != nil {
		return fmt.Errorf("insert feature %q: %w", trimmed, classify(err))
	}
	return nil
}

// InsertPhoneme inserts a PhonemeBank row and returns its id. A duplicate IPA
// string is reported as ErrSchemaViolation.
func InsertPhoneme(ctx context.Context, db DBExecutor, p Phoneme) (int64, error) {
	if p.IPA == "" {
		return 0, fmt.Errorf("phoneme IPA must be non-empty")
	}
	if p.Type == "" {
		p.Type = TypeUnknown
	}
	var voicing any
	if p.Type == TypeConsonant {
		voicing = 0
		if p.ConsonantVoiced {
			voicing = 1
		}
	}
	res, err := db.ExecContext(ctx, `INSERT INTO PhonemeBank (IPA, Type, Vowel_Height, Vowel_Backness, Vowel_Roundness,
		Consonant_Voicing, Consonant_ArticulationManner, Consonant_ArticulationPlace, Modifiers, Feature)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.IPA, string(p.Type), nullableString(p.VowelHeight), nullableString(p.VowelBackness), nullableString(p.VowelRoundness),
		voicing, nullableString(p.ConsonantManner), nullableString(p.ConsonantPlace),
		nullableString(p.Modifiers), nullableInt64(p.FeatureID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert phoneme %q: %w", p.IPA, classify(err))
	}
	return res.LastInsertId()
}

// InsertRow issues a single-row INSERT into table. Column names are quoted;
// values must already carry surrogate ids in place of natural keys.
func InsertRow(ctx context.Context, db DBExecutor, table string, columns []string, values []any) error {
	if len(columns) == 0 {
		return fmt.Errorf("insert into %s: no columns", table)
	}
	if len(columns) != len(values) {
		return fmt.Errorf("insert into %s: %d columns but %d values", table, len(columns), len(values))
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	qmarks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(quoted, ", "), qmarks)
	if _, err := db.ExecContext(ctx, query, values...); err != nil {
		return classify(err)
	}
	return nil
}

// ListTables returns the user tables in lexicographic order, excluding SQLite
// internals and the migration bookkeeping table.
func ListTables(ctx context.Context, db DBExecutor) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if strings.HasPrefix(name, "sqlite_") || name == MigrationsTable {
			continue
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db DBExecutor, table string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n)
	return n, err
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// nullableInt64 returns nil for 0 (meaning no reference) else the value.
func nullableInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
