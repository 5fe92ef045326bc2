package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rsned/crafting-data/pkg/crafting"
)

// CatalogStore handles catalog data access.
type CatalogStore struct {
	db *DB
}

// NewCatalogStore creates a new CatalogStore.
func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// ReplaceCatalog clears any previous export and writes catalog in one
// transaction, stamping the build metadata with runID.
func (s *CatalogStore) ReplaceCatalog(ctx context.Context, catalog *crafting.Catalog, runID string) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := clearCatalog(ctx, tx); err != nil {
			return err
		}

		entryStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO catalog_entries
			(id, position, name, tier, rarity, icon, extraction_skill, tag)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing entry statement: %w", err)
		}
		defer func() { _ = entryStmt.Close() }()

		recipeStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO catalog_recipes
			(entry_id, position, skill_id, level, output_quantity, possibilities)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing recipe statement: %w", err)
		}
		defer func() { _ = recipeStmt.Close() }()

		itemStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recipe_consumed_items (recipe_id, position, item_id, quantity)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing consumed item statement: %w", err)
		}
		defer func() { _ = itemStmt.Close() }()

		var recipeCount int
		for pos, id := range catalog.IDs() {
			e := catalog.Get(id)
			_, err := entryStmt.ExecContext(ctx,
				int64(id), pos, e.Name, e.Tier, e.Rarity, e.Icon, e.ExtractionSkill, e.Tag,
			)
			if err != nil {
				return fmt.Errorf("inserting entry %s: %w", id, err)
			}

			for rpos, r := range e.Recipes {
				possibilities, err := json.Marshal(r.Possibilities)
				if err != nil {
					return fmt.Errorf("encoding possibilities for %s: %w", id, err)
				}
				res, err := recipeStmt.ExecContext(ctx,
					int64(id), rpos, r.LevelRequirements.SkillID, r.LevelRequirements.Level,
					r.OutputQuantity, string(possibilities),
				)
				if err != nil {
					return fmt.Errorf("inserting recipe for %s: %w", id, err)
				}
				recipeID, err := res.LastInsertId()
				if err != nil {
					return fmt.Errorf("reading recipe id for %s: %w", id, err)
				}

				for ipos, ci := range r.ConsumedItems {
					if _, err := itemStmt.ExecContext(ctx, recipeID, ipos, int64(ci.ID), ci.Quantity); err != nil {
						return fmt.Errorf("inserting consumed item for %s: %w", id, err)
					}
				}
				recipeCount++
			}
		}

		return stampBuild(ctx, tx, catalog.Len(), recipeCount, runID)
	})
}

// ClearCatalog removes all catalog data.
func (s *CatalogStore) ClearCatalog(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return clearCatalog(ctx, tx)
	})
}

// Children first so the delete does not depend on foreign key enforcement.
func clearCatalog(ctx context.Context, ex execer) error {
	for _, table := range []string{"recipe_consumed_items", "catalog_recipes", "catalog_entries"} {
		if _, err := ex.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// GetEntry retrieves a single entry with its recipes in ranked order.
// It returns nil if the id is not in the catalog.
func (s *CatalogStore) GetEntry(ctx context.Context, id crafting.UnifiedID) (*crafting.CatalogEntry, error) {
	e := &crafting.CatalogEntry{ID: id}

	err := s.db.QueryRowContext(ctx, `
		SELECT name, tier, rarity, icon, extraction_skill, tag
		FROM catalog_entries WHERE id = ?
	`, int64(id)).Scan(
		&e.Name,
		&e.Tier,
		&e.Rarity,
		&e.Icon,
		&e.ExtractionSkill,
		&e.Tag,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}

	recipes, err := s.getEntryRecipes(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Recipes = recipes

	return e, nil
}

// getEntryRecipes retrieves the recipes of an entry.
func (s *CatalogStore) getEntryRecipes(ctx context.Context, id crafting.UnifiedID) ([]crafting.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, skill_id, level, output_quantity, possibilities
		FROM catalog_recipes
		WHERE entry_id = ?
		ORDER BY position
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("querying recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipeIDs []int64
	recipes := []crafting.Recipe{}
	for rows.Next() {
		var (
			recipeID      int64
			r             crafting.Recipe
			possibilities string
		)
		if err := rows.Scan(
			&recipeID,
			&r.LevelRequirements.SkillID,
			&r.LevelRequirements.Level,
			&r.OutputQuantity,
			&possibilities,
		); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		if err := json.Unmarshal([]byte(possibilities), &r.Possibilities); err != nil {
			return nil, fmt.Errorf("decoding possibilities: %w", err)
		}
		recipeIDs = append(recipeIDs, recipeID)
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Close before issuing more queries on the single connection.
	_ = rows.Close()

	for i, recipeID := range recipeIDs {
		items, err := s.getConsumedItems(ctx, recipeID)
		if err != nil {
			return nil, err
		}
		recipes[i].ConsumedItems = items
	}

	return recipes, nil
}

// getConsumedItems retrieves the consumed items of a recipe.
func (s *CatalogStore) getConsumedItems(ctx context.Context, recipeID int64) ([]crafting.ConsumedItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, quantity
		FROM recipe_consumed_items
		WHERE recipe_id = ?
		ORDER BY position
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("querying consumed items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []crafting.ConsumedItem{}
	for rows.Next() {
		var (
			itemID int64
			ci     crafting.ConsumedItem
		)
		if err := rows.Scan(&itemID, &ci.Quantity); err != nil {
			return nil, fmt.Errorf("scanning consumed item: %w", err)
		}
		ci.ID = crafting.UnifiedID(itemID)
		items = append(items, ci)
	}

	return items, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchEntries searches entries by name (case-insensitive partial match).
// LIKE wildcards in term match literally.
func (s *CatalogStore) SearchEntries(ctx context.Context, term string, limit int) ([]crafting.EntrySearchHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, tag
		FROM catalog_entries
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY position
		LIMIT ?
	`, "%"+likeEscaper.Replace(term)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}
	return scanHits(rows)
}

// ListNames returns id, name and tag of every entry in catalog order.
func (s *CatalogStore) ListNames(ctx context.Context) ([]crafting.EntrySearchHit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, tag FROM catalog_entries ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return scanHits(rows)
}

func scanHits(rows *sql.Rows) ([]crafting.EntrySearchHit, error) {
	defer func() { _ = rows.Close() }()

	var hits []crafting.EntrySearchHit
	for rows.Next() {
		var (
			id  int64
			hit crafting.EntrySearchHit
		)
		if err := rows.Scan(&id, &hit.Name, &hit.Tag); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		hit.ID = crafting.UnifiedID(id)
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// FindEntriesConsuming returns the entries with at least one recipe that
// consumes id, in catalog order.
func (s *CatalogStore) FindEntriesConsuming(ctx context.Context, id crafting.UnifiedID) ([]crafting.UnifiedID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id
		FROM catalog_entries e
		WHERE EXISTS (
			SELECT 1
			FROM catalog_recipes r
			JOIN recipe_consumed_items ci ON ci.recipe_id = r.id
			WHERE r.entry_id = e.id AND ci.item_id = ?
		)
		ORDER BY e.position
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("finding entries consuming %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []crafting.UnifiedID
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning entry id: %w", err)
		}
		ids = append(ids, crafting.UnifiedID(v))
	}

	return ids, rows.Err()
}

// CountEntries returns the total number of entries.
func (s *CatalogStore) CountEntries(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// CountRecipes returns the total number of recipes.
func (s *CatalogStore) CountRecipes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_recipes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return count, nil
}
