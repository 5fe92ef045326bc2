package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rsned/crafting-data/pkg/crafting"
)

// Build info keys. ReplaceCatalog writes all but MetaSchemaVersion, which
// InitSchema owns.
const (
	MetaLastBuild     = "catalog_last_build"
	MetaEntries       = "catalog_entries"
	MetaRecipes       = "catalog_recipes"
	MetaRunID         = "catalog_run_id"
	MetaSchemaVersion = "schema_version"
)

func putBuildInfo(ctx context.Context, ex execer, key, value string) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO build_info (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("recording build info %s: %w", key, err)
	}
	return nil
}

// stampBuild records the summary of the catalog written by run runID.
func stampBuild(ctx context.Context, ex execer, entries, recipes int, runID string) error {
	info := [][2]string{
		{MetaLastBuild, time.Now().UTC().Format(time.RFC3339)},
		{MetaEntries, strconv.Itoa(entries)},
		{MetaRecipes, strconv.Itoa(recipes)},
		{MetaRunID, runID},
	}
	for _, kv := range info {
		if err := putBuildInfo(ctx, ex, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// BuildInfo returns the value recorded under key, or "" when the key was
// never written.
func (s *CatalogStore) BuildInfo(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM build_info WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading build info %s: %w", key, err)
	}
	return value, nil
}

// Stats counts the stored entries and recipes and attaches the last build's
// time and run id.
func (s *CatalogStore) Stats(ctx context.Context) (*crafting.CatalogStats, error) {
	entries, err := s.CountEntries(ctx)
	if err != nil {
		return nil, err
	}
	recipes, err := s.CountRecipes(ctx)
	if err != nil {
		return nil, err
	}

	stats := &crafting.CatalogStats{Entries: entries, Recipes: recipes}
	if stats.LastBuild, err = s.BuildInfo(ctx, MetaLastBuild); err != nil {
		return nil, err
	}
	if stats.RunID, err = s.BuildInfo(ctx, MetaRunID); err != nil {
		return nil, err
	}
	return stats, nil
}
