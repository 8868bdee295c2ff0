package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/japaniel/conlangdb/pkg/bank"
	"github.com/japaniel/conlangdb/pkg/db"
	"github.com/japaniel/conlangdb/pkg/graph"
	"github.com/japaniel/conlangdb/pkg/ingest"
	"github.com/japaniel/conlangdb/pkg/ipa"
	"github.com/spf13/cobra"
)

func newCreateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create or migrate the database schema",
		RunE: func(c *cobra.Command, args []string) error {
			conn, err := a.openStore()
			if err != nil {
				return err
			}
			defer conn.Close()

			p, err := a.pipeline(conn)
			if err != nil {
				return err
			}
			if err := p.PrepareSchema(); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Database initialized at %s\n", a.cfg.Database.Path)
			return nil
		},
	}
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the phoneme bank from the IPA catalog",
		RunE: func(c *cobra.Command, args []string) error {
			conn, err := a.openStore()
			if err != nil {
				return err
			}
			defer conn.Close()

			p, err := a.pipeline(conn)
			if err != nil {
				return err
			}
			if err := p.PrepareSchema(); err != nil {
				return err
			}
			rep, err := p.SeedBank(c.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Seeded %d phonemes (%d already present).\n", rep.Inserted, rep.Duplicates)
			return nil
		},
	}
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Ingest <Table>.csv files into the database",
		RunE: func(c *cobra.Command, args []string) error {
			conn, err := a.openStore()
			if err != nil {
				return err
			}
			defer conn.Close()

			p, err := a.pipeline(conn)
			if err != nil {
				return err
			}
			if err := p.PrepareSchema(); err != nil {
				return err
			}
			rep, err := p.Import(c.Context())
			printReport(c.OutOrStdout(), rep)
			return err
		},
	}
}

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Create the schema, seed the phoneme bank and ingest every table",
		RunE: func(c *cobra.Command, args []string) error {
			conn, err := a.openStore()
			if err != nil {
				return err
			}
			defer conn.Close()

			p, err := a.pipeline(conn)
			if err != nil {
				return err
			}
			rep, err := p.Run(c.Context())
			printReport(c.OutOrStdout(), rep)
			return err
		},
	}
}

func newCatalogCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the seed catalog with the records derived from it",
		RunE: func(c *cobra.Command, args []string) error {
			cat, err := ipa.LoadCatalog(a.cfg.CatalogPath)
			if err != nil {
				return err
			}
			printCatalog(c.OutOrStdout(), cat)
			return nil
		},
	}
}

func newMirrorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mirror",
		Short: "Mirror the CSV sources into Neo4j",
		RunE: func(c *cobra.Command, args []string) error {
			if !a.cfg.Neo4j.Enabled() {
				return fmt.Errorf("neo4j.uri (NEO4J_URI) is not set")
			}
			conn, err := a.openStore()
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.InitDB(conn, a.log); err != nil {
				return err
			}
			tables, err := db.ListTables(c.Context(), conn)
			if err != nil {
				return err
			}

			ctx := c.Context()
			m, err := graph.NewMirror(ctx, graph.Config{
				URI:      a.cfg.Neo4j.URI,
				User:     a.cfg.Neo4j.User,
				Password: a.cfg.Neo4j.Password,
				Database: a.cfg.Neo4j.Database,
				Timeout:  a.cfg.Neo4j.Timeout(),
			}, a.log)
			if err != nil {
				return err
			}
			defer m.Close(ctx)

			synced, err := m.Sync(ctx, a.cfg.DataDir, ingest.Order(tables))
			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tWRITTEN\tSKIPPED\tFAILED")
			for _, ts := range synced {
				if ts.Missing {
					fmt.Fprintf(w, "%s\t-\t-\t-\n", ts.Table)
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", ts.Table, ts.Written, ts.Skipped, ts.Failed)
			}
			_ = w.Flush()
			return err
		},
	}
}

func printReport(out io.Writer, rep ingest.Report) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tINSERTED\tSKIPPED\tFAILED")
	for _, t := range rep.Tables {
		if t.Missing {
			fmt.Fprintf(w, "%s\t-\t-\t-\n", t.Table)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", t.Table, t.Count(ingest.Inserted), t.Count(ingest.Skipped), t.Count(ingest.Failed))
	}
	_ = w.Flush()

	// Per-row diagnostics for anything that did not go in.
	for _, t := range rep.Tables {
		for _, r := range t.Results {
			if r.Status == ingest.Inserted {
				continue
			}
			fmt.Fprintf(out, "%s line %d: %s: %v\n", t.Table, r.Line, r.Status, r.Err)
		}
	}
}

func printCatalog(out io.Writer, cat *ipa.Catalog) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IPA\tTYPE\tATTRIBUTES\tMODIFIERS\tFEATURE")
	for _, e := range cat.Entries {
		p, feature := bank.Derive(e)
		var attrs []string
		switch p.Type {
		case db.TypeVowel:
			attrs = []string{p.VowelHeight, p.VowelBackness, p.VowelRoundness}
		case db.TypeConsonant:
			voicing := "voiceless"
			if p.ConsonantVoiced {
				voicing = "voiced"
			}
			attrs = []string{voicing, p.ConsonantPlace, p.ConsonantManner}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.IPA, p.Type, strings.Join(nonEmpty(attrs), " "), p.Modifiers, feature)
	}
	_ = w.Flush()
}

func nonEmpty(ss []string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
