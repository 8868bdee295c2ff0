package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/japaniel/conlangdb/pkg/bank"
	"github.com/japaniel/conlangdb/pkg/db"
	"github.com/japaniel/conlangdb/pkg/ipa"
	"github.com/japaniel/conlangdb/pkg/resolve"
	"go.uber.org/zap"
)

// Pipeline runs the stages of a load in order:
// Uninitialized -> SchemaReady -> BankSeeded -> Ingesting(table) ... -> Complete.
// The three stages can also be run on their own; each is safe to repeat
// against a populated store.
type Pipeline struct {
	DB      *sql.DB
	DataDir string
	// Catalog seeds the phoneme bank; nil selects the embedded catalog.
	Catalog *ipa.Catalog
	Logger  *zap.Logger
	// OnState is called on every transition; table is set while Ingesting.
	OnState func(s State, table string)
	// OnProgress is passed through to the Ingester.
	OnProgress func(current, total int)

	state    State
	resolver *resolve.Resolver
}

// NewPipeline creates a pipeline on an open store.
func NewPipeline(conn *sql.DB, dataDir string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{DB: conn, DataDir: dataDir, Logger: logger}
}

// State returns the last state reached.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) setState(s State, table string) {
	p.state = s
	if table != "" {
		p.Logger.Debug("Run state", zap.Stringer("state", s), zap.String("table", table))
	} else {
		p.Logger.Info("Run state", zap.Stringer("state", s))
	}
	if p.OnState != nil {
		p.OnState(s, table)
	}
}

// Resolver returns the run's resolver, shared by seeding and ingestion so
// both stages see one cache.
func (p *Pipeline) Resolver() *resolve.Resolver {
	if p.resolver == nil {
		p.resolver = resolve.New(p.DB, p.Logger)
	}
	return p.resolver
}

// PrepareSchema applies pending migrations.
func (p *Pipeline) PrepareSchema() error {
	if err := db.InitDB(p.DB, p.Logger); err != nil {
		return fmt.Errorf("prepare schema: %w", err)
	}
	p.setState(SchemaReady, "")
	return nil
}

// SeedBank inserts the catalog into the phoneme bank.
func (p *Pipeline) SeedBank(ctx context.Context) (bank.Report, error) {
	cat := p.Catalog
	if cat == nil {
		var err error
		if cat, err = ipa.Default(); err != nil {
			return bank.Report{}, err
		}
	}
	rep, err := bank.NewLoader(p.DB, p.Resolver(), p.Logger).Load(ctx, cat)
	if err != nil {
		return rep, fmt.Errorf("seed bank: %w", err)
	}
	p.setState(BankSeeded, "")
	return rep, nil
}

// Import ingests every table the store defines.
func (p *Pipeline) Import(ctx context.Context) (Report, error) {
	tables, err := db.ListTables(ctx, p.DB)
	if err != nil {
		return Report{}, fmt.Errorf("list tables: %w", err)
	}
	ig := NewIngester(p.DB, p.Resolver(), p.DataDir)
	ig.Logger = p.Logger
	ig.OnProgress = p.OnProgress
	ig.OnTable = func(table string) { p.setState(Ingesting, table) }

	rep, err := ig.Ingest(ctx, tables)
	if err != nil {
		return rep, err
	}
	p.setState(Complete, "")
	p.Logger.Info("Import complete",
		zap.Int("tables", len(rep.Tables)),
		zap.Int("inserted", rep.Count(Inserted)),
		zap.Int("skipped", rep.Count(Skipped)),
		zap.Int("failed", rep.Count(Failed)),
	)
	return rep, nil
}

// Run executes all stages.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if err := p.PrepareSchema(); err != nil {
		return Report{}, err
	}
	if _, err := p.SeedBank(ctx); err != nil {
		return Report{}, err
	}
	return p.Import(ctx)
}
