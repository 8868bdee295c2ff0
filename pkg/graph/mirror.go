// Package graph mirrors the CSV row sources into Neo4j. The mirror is keyed
// by natural identifiers (language names, feature names, IPA strings) and is
// independent of the relational store's surrogate ids.
package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/japaniel/conlangdb/pkg/source"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Config holds the Neo4j connection settings.
type Config struct {
	URI      string
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// writer executes the statements of one row in a single transaction.
type writer interface {
	Write(ctx context.Context, stmts []Statement) error
	Close(ctx context.Context) error
}

// Mirror pushes row sources into a Neo4j database.
type Mirror struct {
	w   writer
	log *zap.Logger
}

// TableSync counts what happened to one table's rows.
type TableSync struct {
	Table   string
	Missing bool
	Written int
	Skipped int
	Failed  int
}

// NewMirror connects to Neo4j and verifies connectivity.
func NewMirror(ctx context.Context, cfg Config, logger *zap.Logger) (*Mirror, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, fmt.Errorf("graph: neo4j uri is required")
	}
	user := cfg.User
	if user == "" {
		user = "neo4j"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, cfg.Password, ""), func(c *neo4j.Config) {
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("graph: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graph: verify connectivity: %w", err)
	}

	return &Mirror{
		w:   &driverWriter{driver: driver, database: cfg.Database},
		log: logger.With(zap.String("client", "Neo4j")),
	}, nil
}

// Close releases the driver.
func (m *Mirror) Close(ctx context.Context) error {
	if m == nil || m.w == nil {
		return nil
	}
	return m.w.Close(ctx)
}

// EnsureConstraints creates the uniqueness constraints. Failures are logged
// and do not stop the sync.
func (m *Mirror) EnsureConstraints(ctx context.Context) {
	for _, s := range Constraints() {
		if err := m.w.Write(ctx, []Statement{s}); err != nil {
			m.log.Warn("neo4j schema init failed (continuing)", zap.String("cypher", s.Cypher), zap.Error(err))
		}
	}
}

// Sync mirrors the given tables, in order, from dataDir. Rows that fail are
// logged and counted; only cancellation stops the sync.
func (m *Mirror) Sync(ctx context.Context, dataDir string, tables []string) ([]TableSync, error) {
	m.EnsureConstraints(ctx)

	out := make([]TableSync, 0, len(tables))
	for _, table := range tables {
		ts, err := m.syncTable(ctx, dataDir, table)
		out = append(out, ts)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (m *Mirror) syncTable(ctx context.Context, dataDir, table string) (TableSync, error) {
	ts := TableSync{Table: table}
	r, err := source.Open(dataDir, table)
	if err != nil {
		m.log.Info("No data for table", zap.String("table", table), zap.Error(err))
		ts.Missing = true
		return ts, nil
	}
	defer r.Close()

	for {
		if err := ctx.Err(); err != nil {
			return ts, err
		}
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			m.log.Warn("Unreadable row", zap.String("table", table), zap.Error(err))
			ts.Failed++
			continue
		}
		stmts, ok := Project(table, row.Map())
		if !ok {
			ts.Skipped++
			continue
		}
		if err := m.w.Write(ctx, stmts); err != nil {
			m.log.Warn("Failed to mirror row", zap.String("table", table), zap.Int("line", row.Line), zap.Error(err))
			ts.Failed++
			continue
		}
		ts.Written++
	}
	m.log.Info("Mirrored table",
		zap.String("table", table),
		zap.Int("written", ts.Written),
		zap.Int("skipped", ts.Skipped),
		zap.Int("failed", ts.Failed),
	)
	return ts, nil
}

type driverWriter struct {
	driver   neo4j.DriverWithContext
	database string
}

func (d *driverWriter) Write(ctx context.Context, stmts []Statement) error {
	session := d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: d.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, s := range stmts {
			res, err := tx.Run(ctx, s.Cypher, s.Params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (d *driverWriter) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
