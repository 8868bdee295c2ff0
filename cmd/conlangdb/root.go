package main

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/japaniel/conlangdb/pkg/config"
	"github.com/japaniel/conlangdb/pkg/db"
	"github.com/japaniel/conlangdb/pkg/ingest"
	"github.com/japaniel/conlangdb/pkg/ipa"
	"github.com/japaniel/conlangdb/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgPath string
	dbPath  string
	dataDir string
	catalog string
	logMode string

	cfg *config.Config
	log *zap.Logger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "conlangdb",
		Short: "Load constructed-language data from CSV into SQLite",
		Long: `
Builds the conlang store: applies the schema, seeds the phoneme bank from an
IPA catalog, and ingests one <Table>.csv per table, resolving language names,
feature names and IPA strings to ids along the way.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return a.setup(c)
		},
		PersistentPostRun: func(c *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgPath, "config", "c", "", "config file (default "+config.DefaultPath+" if present)")
	flags.StringVar(&a.dbPath, "db", "", "path to the SQLite database")
	flags.StringVar(&a.dataDir, "data", "", "directory holding <Table>.csv files")
	flags.StringVar(&a.catalog, "catalog", "", "YAML seed catalog (default: embedded)")
	flags.StringVar(&a.logMode, "log-mode", "", "development or production")

	root.AddCommand(
		newCreateCommand(a),
		newSeedCommand(a),
		newImportCommand(a),
		newRunCommand(a),
		newCatalogCommand(a),
		newMirrorCommand(a),
	)
	return root
}

func (a *app) setup(c *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	flags := c.Flags()
	if flags.Changed("db") {
		cfg.Database.Path = a.dbPath
	}
	if flags.Changed("data") {
		cfg.DataDir = a.dataDir
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath = a.catalog
	}
	if flags.Changed("log-mode") {
		cfg.LogMode = a.logMode
	}
	a.cfg = cfg

	a.log, err = logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

// openStore opens the database; failure here is the one fatal error of a run.
func (a *app) openStore() (*sql.DB, error) {
	conn, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", a.cfg.Database.Path, err)
	}
	return conn, nil
}

func (a *app) pipeline(conn *sql.DB) (*ingest.Pipeline, error) {
	cat, err := ipa.LoadCatalog(a.cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	p := ingest.NewPipeline(conn, a.cfg.DataDir, a.log)
	p.Catalog = cat
	return p, nil
}
