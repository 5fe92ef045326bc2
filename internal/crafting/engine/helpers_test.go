package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-data/internal/crafting/config"
	"github.com/rsned/crafting-data/pkg/crafting"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func itemDesc(id uint64, name, tag string) crafting.ItemDesc {
	return crafting.ItemDesc{ID: id, Name: name, Tier: 1, Rarity: "Common", Tag: tag, IconAssetName: "GeneratedIcons/Items/" + name}
}

func cargoDesc(id uint64, name, tag string) crafting.CargoDesc {
	return crafting.CargoDesc{ID: id, Name: name, Tier: 1, Rarity: "Common", Tag: tag, IconAssetName: "GeneratedIcons/Cargo/" + name}
}

func itemStack(id uint64, qty int) crafting.ItemStack {
	return crafting.ItemStack{ItemID: id, ItemType: crafting.CategoryItem, Quantity: qty}
}

func cargoStack(id uint64, qty int) crafting.ItemStack {
	return crafting.ItemStack{ItemID: id, ItemType: crafting.CategoryCargo, Quantity: qty}
}

func craftDesc(id uint64, out crafting.ItemStack, consumed ...crafting.ItemStack) crafting.CraftingRecipeDesc {
	return crafting.CraftingRecipeDesc{
		ID:                 id,
		LevelRequirements:  []crafting.LevelRequirement{{SkillID: 1, Level: 1}},
		ConsumedItemStacks: consumed,
		CraftedItemStacks:  []crafting.ItemStack{out},
	}
}

func extractionDesc(skill int, stacks ...crafting.ItemStack) crafting.ExtractionRecipeDesc {
	rec := crafting.ExtractionRecipeDesc{
		LevelRequirements: []crafting.LevelRequirement{{SkillID: skill, Level: 1}},
	}
	for i := range stacks {
		rec.ExtractedItemStacks = append(rec.ExtractedItemStacks, crafting.ExtractedStack{ItemStack: &stacks[i]})
	}
	return rec
}

func enemyDesc(skill int, stacks ...crafting.ItemStack) crafting.EnemyDesc {
	enemy := crafting.EnemyDesc{
		ExperiencePerDamageDealt: []crafting.ExperienceRate{{SkillID: skill}},
	}
	for i := range stacks {
		enemy.ExtractedItemStacks = append(enemy.ExtractedItemStacks, crafting.ExtractedStack{ItemStack: &stacks[i]})
	}
	return enemy
}

func newTestBuilder(t *testing.T, tables *crafting.Tables) *Builder {
	t.Helper()
	b, err := NewBuilder(tables, config.Default(), discardLogger())
	require.NoError(t, err)
	return b
}

func buildCatalog(t *testing.T, tables *crafting.Tables) *crafting.Catalog {
	t.Helper()
	catalog, err := newTestBuilder(t, tables).Build()
	require.NoError(t, err)
	return catalog
}

// recipeWithPossibilities returns the first recipe of e carrying a
// non-empty possibilities table.
func recipeWithPossibilities(e *crafting.CatalogEntry) (crafting.Recipe, bool) {
	for _, r := range e.Recipes {
		if len(r.Possibilities) > 0 {
			return r, true
		}
	}
	return crafting.Recipe{}, false
}
