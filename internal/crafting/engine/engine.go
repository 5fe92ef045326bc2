// Package engine contains the crafting catalog business logic: the batch
// Builder that resolves and ranks recipes, and the Engine that answers
// queries over an exported catalog.
package engine

import (
	"context"

	"github.com/rsned/crafting-data/internal/crafting/db"
	"github.com/rsned/crafting-data/pkg/crafting"
)

// Engine is the query engine over a stored catalog.
type Engine struct {
	catalog *db.CatalogStore
}

// New creates a new Engine with the given database.
func New(database *db.DB) *Engine {
	return &Engine{catalog: db.NewCatalogStore(database)}
}

// Stats returns entry and recipe counts plus the last build's metadata.
func (e *Engine) Stats(ctx context.Context) (*crafting.CatalogStats, error) {
	return e.catalog.Stats(ctx)
}
