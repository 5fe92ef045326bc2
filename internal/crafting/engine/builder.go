package engine

import (
	"fmt"
	"log/slog"

	"github.com/rsned/crafting-data/internal/crafting/config"
	"github.com/rsned/crafting-data/pkg/crafting"
)

// Builder turns the export tables into a ranked catalog. A Builder is
// single-use and not safe for concurrent use.
type Builder struct {
	tables *crafting.Tables
	cfg    config.Config
	skills *SkillResolver
	logger *slog.Logger
}

// NewBuilder creates a Builder over the given tables.
func NewBuilder(tables *crafting.Tables, cfg config.Config, logger *slog.Logger) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	skills, err := NewSkillResolver(tables, cfg.SkillCacheSize)
	if err != nil {
		return nil, err
	}
	return &Builder{
		tables: tables,
		cfg:    cfg,
		skills: skills,
		logger: logger,
	}, nil
}

// Build runs every phase and returns the finished catalog.
//
// The only fatal condition is a local id that can not be mapped into the
// unified space; the returned error then wraps crafting.ErrIDOverflow.
func (b *Builder) Build() (*crafting.Catalog, error) {
	catalog := crafting.NewCatalog()

	b.logger.Info("collecting items", "count", len(b.tables.Items))
	if err := b.collectItems(catalog); err != nil {
		return nil, fmt.Errorf("collecting items: %w", err)
	}

	b.logger.Info("collecting cargo", "count", len(b.tables.Cargo))
	if err := b.collectCargo(catalog); err != nil {
		return nil, fmt.Errorf("collecting cargo: %w", err)
	}

	b.logger.Info("expanding bundles")
	if err := b.expandBundles(catalog); err != nil {
		return nil, fmt.Errorf("expanding bundles: %w", err)
	}

	b.logger.Info("sorting recipes")
	if err := b.sortRecipes(catalog); err != nil {
		return nil, fmt.Errorf("sorting recipes: %w", err)
	}

	b.logger.Info("catalog built", "entries", catalog.Len(), "recipes", catalog.RecipeCount())
	return catalog, nil
}

// collectItems adds every catalog-worthy item: not ignored by tag, and
// craftable, extractable or a recipe unlock.
func (b *Builder) collectItems(catalog *crafting.Catalog) error {
	var skipped int
	for _, item := range b.tables.Items {
		id, err := crafting.ToUnified(item.ID, crafting.CategoryItem)
		if err != nil {
			return err
		}

		if b.cfg.IsIgnoredTag(item.Tag) {
			skipped++
			continue
		}

		recipes, err := b.FindRecipes(item.ID, crafting.CategoryItem)
		if err != nil {
			return err
		}
		skill := b.skills.Find(item.ID, crafting.CategoryItem)

		if len(recipes) == 0 && skill == crafting.SkillNotFound && !b.cfg.IsRecipeUnlock(item.Name) {
			skipped++
			continue
		}

		catalog.Put(&crafting.CatalogEntry{
			ID:              id,
			Name:            item.Name,
			Tier:            item.Tier,
			Rarity:          crafting.RarityOrdinal(item.Rarity),
			Icon:            item.IconAssetName,
			Recipes:         recipes,
			ExtractionSkill: skill,
			Tag:             item.Tag,
		})
	}

	b.logger.Debug("items collected", "kept", catalog.Len(), "skipped", skipped)
	return nil
}

// collectCargo adds every cargo row unconditionally.
func (b *Builder) collectCargo(catalog *crafting.Catalog) error {
	for _, cargo := range b.tables.Cargo {
		id, err := crafting.ToUnified(cargo.ID, crafting.CategoryCargo)
		if err != nil {
			return err
		}

		recipes, err := b.FindRecipes(cargo.ID, crafting.CategoryCargo)
		if err != nil {
			return err
		}

		catalog.Put(&crafting.CatalogEntry{
			ID:              id,
			Name:            cargo.Name,
			Tier:            cargo.Tier,
			Rarity:          crafting.RarityOrdinal(cargo.Rarity),
			Icon:            cargo.IconAssetName,
			Recipes:         recipes,
			ExtractionSkill: b.skills.Find(cargo.ID, crafting.CategoryCargo),
			Tag:             cargo.Tag,
		})
	}
	return nil
}

// sortRecipes deduplicates every entry's recipes and orders them by
// priority.
func (b *Builder) sortRecipes(catalog *crafting.Catalog) error {
	ranker := NewRanker(catalog, b.cfg, b.logger)

	for _, id := range catalog.IDs() {
		entry := catalog.Get(id)
		recipes, err := DedupeRecipes(entry.Recipes)
		if err != nil {
			return fmt.Errorf("entry %s: %w", id, err)
		}
		ranker.Sort(id, recipes)
		entry.Recipes = recipes
	}
	return nil
}
