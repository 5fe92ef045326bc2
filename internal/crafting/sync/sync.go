// Package sync handles loading the game export tables and publishing a built
// catalog to the lookup database.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/rsned/crafting-data/internal/crafting/db"
	"github.com/rsned/crafting-data/pkg/crafting"
)

// Export table file names, relative to the data directory.
const (
	ItemsFile             = "item_desc.json"
	CargoFile             = "cargo_desc.json"
	CraftingRecipesFile   = "crafting_recipe_desc.json"
	ExtractionRecipesFile = "extraction_recipe_desc.json"
	ItemListsFile         = "item_list_desc.json"
	EnemiesFile           = "enemy_desc.json"
)

// Loader reads the export tables from a data directory.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads and decodes all six tables concurrently. The first failure
// cancels the remaining reads; the error names the offending file.
func (l *Loader) Load(ctx context.Context, dataDir string) (*crafting.Tables, error) {
	tables := &crafting.Tables{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readTable(ctx, l, dataDir, ItemsFile, &tables.Items) })
	g.Go(func() error { return readTable(ctx, l, dataDir, CargoFile, &tables.Cargo) })
	g.Go(func() error { return readTable(ctx, l, dataDir, CraftingRecipesFile, &tables.CraftingRecipes) })
	g.Go(func() error { return readTable(ctx, l, dataDir, ExtractionRecipesFile, &tables.ExtractionRecipes) })
	g.Go(func() error { return readTable(ctx, l, dataDir, ItemListsFile, &tables.ItemLists) })
	g.Go(func() error { return readTable(ctx, l, dataDir, EnemiesFile, &tables.Enemies) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// readTable decodes one JSON array file into dst.
func readTable[T any](ctx context.Context, l *Loader, dataDir, name string, dst *[]T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}

	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = rows

	l.logger.Debug("loaded table", "file", name, "rows", len(rows))
	return nil
}

// Syncer publishes built catalogs to the lookup database.
type Syncer struct {
	db *db.DB
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB) *Syncer {
	return &Syncer{db: database}
}

// Publish replaces whatever catalog the database holds with catalog.
func (s *Syncer) Publish(ctx context.Context, catalog *crafting.Catalog, runID string) error {
	store := db.NewCatalogStore(s.db)
	if err := store.ReplaceCatalog(ctx, catalog, runID); err != nil {
		return fmt.Errorf("publishing catalog: %w", err)
	}
	return nil
}

// ClearAll removes all catalog data from the database.
func (s *Syncer) ClearAll(ctx context.Context) error {
	return db.NewCatalogStore(s.db).ClearCatalog(ctx)
}
