// Package ingest drives a load run: it orders the store's tables, reads each
// table's CSV source, replaces natural keys with surrogate ids and inserts the
// rows one transaction at a time.
package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/japaniel/conlangdb/pkg/db"
	"github.com/japaniel/conlangdb/pkg/resolve"
	"github.com/japaniel/conlangdb/pkg/source"
	"go.uber.org/zap"
)

// Ingester loads CSV sources from DataDir into DB.
type Ingester struct {
	DB       *sql.DB
	Resolver *resolve.Resolver
	DataDir  string
	// Logger receives per-table notices and per-row diagnostics. nil means no logging.
	Logger *zap.Logger
	// OnTable is called before a table is read.
	OnTable func(table string)
	// OnProgress is called after each table with the number of processed tables and total tables.
	OnProgress func(current, total int)

	writer *RowWriter
}

// NewIngester creates a new Ingester.
func NewIngester(conn *sql.DB, r *resolve.Resolver, dataDir string) *Ingester {
	return &Ingester{
		DB:       conn,
		Resolver: r,
		DataDir:  dataDir,
	}
}

func (ig *Ingester) log() *zap.Logger {
	if ig.Logger == nil {
		return zap.NewNop()
	}
	return ig.Logger
}

// Ingest processes tables in Order. Row failures are recorded in the report
// and never stop the run; only cancellation or an unreadable source does.
func (ig *Ingester) Ingest(ctx context.Context, tables []string) (Report, error) {
	if ig.Resolver == nil {
		ig.Resolver = resolve.New(ig.DB, ig.Logger)
	}
	ig.writer = NewRowWriter(ig.DB)
	defer ig.writer.Close()

	var rep Report
	order := Order(tables)
	for i, name := range order {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if ig.OnTable != nil {
			ig.OnTable(name)
		}
		tr, err := ig.ingestTable(ctx, name)
		rep.Tables = append(rep.Tables, tr)
		if err != nil {
			return rep, err
		}
		if ig.OnProgress != nil {
			ig.OnProgress(i+1, len(order))
		}
	}
	return rep, nil
}

func (ig *Ingester) ingestTable(ctx context.Context, name string) (TableReport, error) {
	tr := TableReport{Table: name, Source: source.Path(ig.DataDir, name)}
	r, err := source.Open(ig.DataDir, name)
	if err != nil {
		if !errors.Is(err, source.ErrSourceUnavailable) {
			ig.log().Warn("Unreadable data for table", zap.String("table", name), zap.Error(err))
		} else {
			ig.log().Info("No data for table", zap.String("table", name), zap.String("path", tr.Source))
		}
		tr.Missing = true
		return tr, nil
	}
	defer r.Close()

	ig.log().Info("Ingesting table", zap.String("table", name), zap.String("path", tr.Source))
	desc := Describe(name)
	for {
		if err := ctx.Err(); err != nil {
			return tr, err
		}
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				tr.Results = append(tr.Results, ig.failRow(name, pe.StartLine, err))
				continue
			}
			return tr, fmt.Errorf("read %s: %w", name, err)
		}
		tr.Results = append(tr.Results, ig.ingestRow(ctx, desc, row))
	}

	ig.log().Info("Finished table",
		zap.String("table", name),
		zap.Int("inserted", tr.Count(Inserted)),
		zap.Int("skipped", tr.Count(Skipped)),
		zap.Int("failed", tr.Count(Failed)),
	)
	return tr, nil
}

func (ig *Ingester) failRow(table string, line int, err error) RowResult {
	ig.log().Warn("Row failed", zap.String("table", table), zap.Int("line", line), zap.Error(err))
	return RowResult{Line: line, Status: Failed, Err: err}
}

// ingestRow resolves and inserts one row. Resolution happens outside the
// row's transaction: the store has a single connection.
func (ig *Ingester) ingestRow(ctx context.Context, t Table, row *source.Row) RowResult {
	cols, vals, err := ig.prepare(ctx, t, row)
	if err == nil {
		err = ig.writer.Write(ctx, func(ctx context.Context, tx *sql.Tx) error {
			return db.InsertRow(ctx, tx, t.Name, cols, vals)
		})
	}
	switch {
	case err == nil:
		return RowResult{Line: row.Line, Status: Inserted}
	case errors.Is(err, db.ErrSchemaViolation):
		ig.log().Warn("Row violates schema", zap.String("table", t.Name), zap.Int("line", row.Line), zap.Error(err))
		return RowResult{Line: row.Line, Status: Skipped, Err: err}
	default:
		return ig.failRow(t.Name, row.Line, err)
	}
}

// prepare drops the table's surrogate key and replaces reference columns
// with ids. Empty fields become NULL.
func (ig *Ingester) prepare(ctx context.Context, t Table, row *source.Row) ([]string, []any, error) {
	row.Drop(t.Key)
	vals := make([]any, len(row.Values))
	for i, v := range row.Values {
		if v != "" {
			vals[i] = v
		}
	}
	for _, ref := range t.Refs {
		i := row.Index(ref.Column)
		if i < 0 || row.Values[i] == "" {
			continue
		}
		id, err := ig.resolve(ctx, ref.Kind, row.Values[i])
		if err != nil {
			return nil, nil, err
		}
		if id == 0 {
			vals[i] = nil
		} else {
			vals[i] = id
		}
	}
	return row.Columns, vals, nil
}

func (ig *Ingester) resolve(ctx context.Context, kind resolve.Kind, key string) (int64, error) {
	switch kind {
	case resolve.KindLanguage:
		return ig.Resolver.ResolveLanguage(ctx, key)
	case resolve.KindFeature:
		id, _, err := ig.Resolver.ResolveFeature(ctx, key)
		return id, err
	case resolve.KindPhoneme:
		return ig.Resolver.ResolvePhoneme(ctx, key)
	}
	return 0, fmt.Errorf("no resolver for %s", kind)
}
