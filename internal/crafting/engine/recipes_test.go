package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-data/pkg/crafting"
)

func TestFindRecipes(t *testing.T) {
	tables := &crafting.Tables{
		CraftingRecipes: []crafting.CraftingRecipeDesc{
			craftDesc(1, itemStack(10, 2), itemStack(11, 3), cargoStack(12, 1)),
			// Produces the cargo with the same local id, not the item.
			craftDesc(2, cargoStack(10, 1), itemStack(11, 1)),
			// Consumes its own output.
			craftDesc(3, itemStack(10, 5), itemStack(10, 1), itemStack(11, 1)),
			// Consumes a cargo sharing the target's local id.
			craftDesc(4, itemStack(10, 1), cargoStack(10, 1)),
			{
				ID: 5,
				LevelRequirements: []crafting.LevelRequirement{
					{SkillID: 7, Level: 20},
					{SkillID: 8, Level: 1},
				},
				ConsumedItemStacks: []crafting.ItemStack{itemStack(13, 1)},
				CraftedItemStacks:  []crafting.ItemStack{itemStack(99, 1), itemStack(10, 4)},
			},
		},
	}
	b := newTestBuilder(t, tables)

	recipes, err := b.FindRecipes(10, crafting.CategoryItem)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	assert.Equal(t, crafting.Recipe{
		LevelRequirements: crafting.LevelRequirement{SkillID: 1, Level: 1},
		ConsumedItems: []crafting.ConsumedItem{
			{ID: 11, Quantity: 3},
			{ID: crafting.CargoOffset + 12, Quantity: 1},
		},
		OutputQuantity: 2,
		Possibilities:  crafting.Possibilities{},
	}, recipes[0])

	// Only the first level requirement is honored, output from the matched stack.
	assert.Equal(t, crafting.LevelRequirement{SkillID: 7, Level: 20}, recipes[1].LevelRequirements)
	assert.Equal(t, 4, recipes[1].OutputQuantity)

	cargo, err := b.FindRecipes(10, crafting.CategoryCargo)
	require.NoError(t, err)
	require.Len(t, cargo, 1)
	assert.Equal(t, []crafting.ConsumedItem{{ID: 11, Quantity: 1}}, cargo[0].ConsumedItems)

	none, err := b.FindRecipes(404, crafting.CategoryItem)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFindRecipes_NeverConsumesTarget(t *testing.T) {
	tables := &crafting.Tables{
		CraftingRecipes: []crafting.CraftingRecipeDesc{
			craftDesc(1, itemStack(1, 1), itemStack(2, 1)),
			craftDesc(2, itemStack(2, 1), itemStack(1, 1)),
			craftDesc(3, itemStack(1, 1), itemStack(3, 1), itemStack(1, 2)),
			craftDesc(4, cargoStack(3, 1), cargoStack(3, 1)),
		},
	}
	b := newTestBuilder(t, tables)

	for _, target := range []struct {
		id  uint64
		cat crafting.Category
	}{
		{1, crafting.CategoryItem},
		{2, crafting.CategoryItem},
		{3, crafting.CategoryCargo},
	} {
		uid, err := crafting.ToUnified(target.id, target.cat)
		require.NoError(t, err)

		recipes, err := b.FindRecipes(target.id, target.cat)
		require.NoError(t, err)
		for _, r := range recipes {
			assert.False(t, r.Consumes(uid), "%s consumes itself", uid)
		}
	}
}

func TestFindRecipes_ConsumedIDOverflow(t *testing.T) {
	tables := &crafting.Tables{
		CraftingRecipes: []crafting.CraftingRecipeDesc{
			craftDesc(1, itemStack(1, 1), itemStack(uint64(crafting.CargoOffset), 1)),
		},
	}
	b := newTestBuilder(t, tables)

	_, err := b.FindRecipes(1, crafting.CategoryItem)
	require.Error(t, err)
	assert.True(t, errors.Is(err, crafting.ErrIDOverflow))
}
