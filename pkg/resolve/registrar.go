package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/japaniel/conlangdb/pkg/db"
	"go.uber.org/zap"
)

// Registrar finds or creates named phonological features.
type Registrar struct {
	resolver *Resolver
}

// FindOrCreate returns the id of the named feature, inserting it first if the
// store has none. Repeated calls create at most one row per name.
func (g *Registrar) FindOrCreate(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("feature name must be non-empty")
	}
	if id, ok, err := g.resolver.ResolveFeature(ctx, name); err != nil || ok {
		return id, err
	}

	// INSERT OR IGNORE absorbs a concurrent creator; re-query for the id.
	if err := db.InsertFeature(ctx, g.resolver.db, name); err != nil {
		return 0, err
	}
	id, ok, err := g.resolver.ResolveFeature(ctx, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("feature %q missing after insert", name)
	}
	g.resolver.log.Debug("Registered feature", zap.String("name", name), zap.Int64("id", id))
	return id, nil
}
