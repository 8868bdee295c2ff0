package ingest

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestTable(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT UNIQUE)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func insertVal(val string) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO test (val) VALUES (?)", val)
		return err
	}
}

func TestRowWriterCommitsEachRow(t *testing.T) {
	db := openTestTable(t)
	defer db.Close()

	rw := NewRowWriter(db)
	ctx := context.Background()
	for _, v := range []string{"A", "B", "A", "C"} {
		_ = rw.Write(ctx, insertVal(v))
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	// The duplicate "A" fails alone; the rows around it are kept.
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}
}

func TestRowWriterRollback(t *testing.T) {
	db := openTestTable(t)
	defer db.Close()

	rw := NewRowWriter(db)

	boom := errors.New("boom")
	err := rw.Write(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		if err := insertVal("X")(ctx, tx); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test WHERE val = 'X'").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rolled back insert, got %d rows", count)
	}
}

func TestRowWriterClosed(t *testing.T) {
	db := openTestTable(t)
	defer db.Close()

	rw := NewRowWriter(db)
	if err := rw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rw.Close(); !errors.Is(err, ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed on second close, got %v", err)
	}
	if err := rw.Write(context.Background(), insertVal("A")); !errors.Is(err, ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
}
