package engine

import (
	"fmt"

	"github.com/rsned/crafting-data/pkg/crafting"
)

// FindRecipes returns every crafting recipe that produces the given local id
// and category, in table order.
//
// A candidate is dropped when any consumed stack carries the target's local
// id. The consumed stack's category is not compared, so an item and a cargo
// sharing a numeric id filter each other out.
func (b *Builder) FindRecipes(localID uint64, category crafting.Category) ([]crafting.Recipe, error) {
	recipes := []crafting.Recipe{}

	for _, desc := range b.tables.CraftingRecipes {
		for _, out := range desc.CraftedItemStacks {
			if !out.Matches(localID, category) {
				continue
			}

			consumed, ok, err := consumedItems(desc.ConsumedItemStacks, localID)
			if err != nil {
				return nil, fmt.Errorf("recipe %d: %w", desc.ID, err)
			}
			if !ok {
				continue
			}

			recipes = append(recipes, crafting.Recipe{
				LevelRequirements: firstLevelRequirement(desc.LevelRequirements),
				ConsumedItems:     consumed,
				OutputQuantity:    out.Quantity,
				Possibilities:     crafting.Possibilities{},
			})
		}
	}

	return recipes, nil
}

// consumedItems translates consumed stacks into unified ids, preserving
// order. ok is false when the recipe consumes selfID.
func consumedItems(stacks []crafting.ItemStack, selfID uint64) ([]crafting.ConsumedItem, bool, error) {
	items := make([]crafting.ConsumedItem, 0, len(stacks))
	for _, s := range stacks {
		if s.ItemID == selfID {
			return nil, false, nil
		}
		id, err := stackID(s)
		if err != nil {
			return nil, false, err
		}
		items = append(items, crafting.ConsumedItem{ID: id, Quantity: s.Quantity})
	}
	return items, true, nil
}

// stackID maps a stack into the unified space. Anything not typed Cargo is
// treated as an item.
func stackID(s crafting.ItemStack) (crafting.UnifiedID, error) {
	if s.ItemType == crafting.CategoryCargo {
		return crafting.ToUnified(s.ItemID, crafting.CategoryCargo)
	}
	return crafting.ToUnified(s.ItemID, crafting.CategoryItem)
}

// Only the first level requirement alternative is honored.
func firstLevelRequirement(reqs []crafting.LevelRequirement) crafting.LevelRequirement {
	if len(reqs) == 0 {
		return crafting.LevelRequirement{}
	}
	return reqs[0]
}
