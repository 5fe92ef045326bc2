package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-data/internal/crafting/config"
	"github.com/rsned/crafting-data/pkg/crafting"
)

func entry(id crafting.UnifiedID, tag string, rarity int) *crafting.CatalogEntry {
	return &crafting.CatalogEntry{ID: id, Name: tag, Tag: tag, Rarity: rarity, ExtractionSkill: crafting.SkillNotFound}
}

func consuming(output int, items ...crafting.ConsumedItem) crafting.Recipe {
	return crafting.Recipe{
		LevelRequirements: crafting.LevelRequirement{SkillID: 1, Level: 1},
		ConsumedItems:     items,
		OutputQuantity:    output,
	}
}

func newTestRanker(entries ...*crafting.CatalogEntry) (*Ranker, *bytes.Buffer) {
	catalog := crafting.NewCatalog()
	for _, e := range entries {
		catalog.Put(e)
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewRanker(catalog, config.Default(), logger), &buf
}

func TestPriority_DefaultFormula(t *testing.T) {
	r, _ := newTestRanker(
		entry(10, "Plank", 1),
		entry(45, "Wood Log", 2),
		entry(crafting.CargoOffset+3, "Trunk", 1),
	)

	tests := []struct {
		name   string
		recipe crafting.Recipe
		want   float64
	}{
		{
			name:   "3 * 2 * 100 / 1 + (4 + 5)",
			recipe: consuming(1, crafting.ConsumedItem{ID: 45, Quantity: 3}),
			want:   609,
		},
		{
			name:   "output quantity divides",
			recipe: consuming(4, crafting.ConsumedItem{ID: 45, Quantity: 2}),
			want:   2*2*100/4.0 + 9,
		},
		{
			name: "only the first consumed item counts",
			recipe: consuming(1,
				crafting.ConsumedItem{ID: 45, Quantity: 1},
				crafting.ConsumedItem{ID: 10, Quantity: 50},
			),
			want: 209,
		},
		{
			name:   "cargo is weighted",
			recipe: consuming(1, crafting.ConsumedItem{ID: crafting.CargoOffset + 3, Quantity: 1}),
			want:   1001*100 + float64(digitSum(crafting.CargoOffset+3)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, r.Priority(10, tt.recipe), 1e-9)
		})
	}
}

func TestPriority_LowestPriority(t *testing.T) {
	r, logs := newTestRanker(entry(10, "Plank", 1), entry(45, "Wood Log", 2))

	assert.Equal(t, float64(LowestPriority), r.Priority(10, consuming(1)),
		"no consumed items")
	assert.Empty(t, logs.String())

	assert.Equal(t, float64(LowestPriority), r.Priority(10, consuming(1, crafting.ConsumedItem{ID: 404, Quantity: 1})))
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "consumed item not in catalog")
	logs.Reset()

	assert.Equal(t, float64(LowestPriority), r.Priority(10, consuming(0, crafting.ConsumedItem{ID: 45, Quantity: 1})))
	assert.Contains(t, logs.String(), "output quantity is not positive: 0")
	logs.Reset()

	// A negative output must not produce a key ahead of valid recipes.
	assert.Equal(t, float64(LowestPriority), r.Priority(7, consuming(-1, crafting.ConsumedItem{ID: 45, Quantity: 3})))
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "output quantity is not positive: -1")
	logs.Reset()

	assert.Equal(t, 609.0, r.Priority(7, consuming(1, crafting.ConsumedItem{ID: 45, Quantity: 3})))
	assert.Empty(t, logs.String())
}

func TestPriority_ExplicitOverride(t *testing.T) {
	const (
		target   crafting.UnifiedID = 1210004
		carvings crafting.UnifiedID = 1210037
		diagram  crafting.UnifiedID = 1210038
	)
	r, _ := newTestRanker(
		entry(target, "Research", 1),
		entry(carvings, "Carvings", 5),
		entry(diagram, "Diagram", 5),
		entry(45, "Wood Log", 1),
	)

	assert.Equal(t, 0.0, r.Priority(target, consuming(1, crafting.ConsumedItem{ID: carvings, Quantity: 1})))
	assert.Equal(t, 1.0, r.Priority(target, consuming(1, crafting.ConsumedItem{ID: diagram, Quantity: 1})))
	// The first consumed item found in the list decides.
	assert.Equal(t, 1.0, r.Priority(target, consuming(1,
		crafting.ConsumedItem{ID: 45, Quantity: 1},
		crafting.ConsumedItem{ID: diagram, Quantity: 1},
		crafting.ConsumedItem{ID: carvings, Quantity: 1},
	)))
	// Nothing in the list falls through to the formula.
	assert.Equal(t, 109.0, r.Priority(target, consuming(1, crafting.ConsumedItem{ID: 45, Quantity: 1})))

	recipes := []crafting.Recipe{
		consuming(1, crafting.ConsumedItem{ID: 45, Quantity: 1}),
		consuming(1, crafting.ConsumedItem{ID: diagram, Quantity: 1}),
		consuming(1, crafting.ConsumedItem{ID: carvings, Quantity: 1}),
	}
	r.Sort(target, recipes)
	assert.Equal(t, carvings, recipes[0].ConsumedItems[0].ID)
	assert.Equal(t, diagram, recipes[1].ConsumedItems[0].ID)
	assert.Equal(t, crafting.UnifiedID(45), recipes[2].ConsumedItems[0].ID)
}

func TestPriority_TagOverride(t *testing.T) {
	r, _ := newTestRanker(
		entry(1, "Fertilizer", 1),
		entry(2, "Flower", 3),
		entry(3, "Food Waste", 1),
		entry(4, "Berry", 4),
		entry(5, "Sand", 1),
		entry(6, "Flower Pot", 1),
	)

	assert.Equal(t, 0.0, r.Priority(1, consuming(1, crafting.ConsumedItem{ID: 4, Quantity: 9})))
	assert.Equal(t, 1.0, r.Priority(1, consuming(1, crafting.ConsumedItem{ID: 2, Quantity: 9})))
	assert.Equal(t, 5.0, r.Priority(1, consuming(1, crafting.ConsumedItem{ID: 3, Quantity: 9})))
	// Tags match exactly here.
	assert.Equal(t, 106.0, r.Priority(1, consuming(1, crafting.ConsumedItem{ID: 6, Quantity: 1})))
	// Unknown consumed items have no tag and fall through.
	assert.Equal(t, float64(LowestPriority), r.Priority(1, consuming(1, crafting.ConsumedItem{ID: 404, Quantity: 1})))
	// Other targets ignore the table.
	assert.Equal(t, 302.0, r.Priority(5, consuming(1, crafting.ConsumedItem{ID: 2, Quantity: 1})))
}

func TestPriority_ScrapToolBonus(t *testing.T) {
	r, _ := newTestRanker(
		entry(1, "Woodcutting Tool", 1),
		entry(2, "Scrap", 1),
		entry(3, "Plank", 1),
		entry(4, "Wall", 1),
	)

	scrap := consuming(1, crafting.ConsumedItem{ID: 3, Quantity: 1}, crafting.ConsumedItem{ID: 2, Quantity: 1})
	plain := consuming(1, crafting.ConsumedItem{ID: 3, Quantity: 2})

	assert.Equal(t, 103.0+ScrapToolBonus, r.Priority(1, scrap))
	assert.Equal(t, 203.0, r.Priority(1, plain))
	// Only tool targets get the bonus.
	assert.Equal(t, 103.0, r.Priority(4, scrap))

	recipes := []crafting.Recipe{scrap, plain}
	r.Sort(1, recipes)
	assert.Equal(t, plain, recipes[0])
	assert.Equal(t, scrap, recipes[1])
}

func TestSort_Stable(t *testing.T) {
	r, _ := newTestRanker(entry(1, "Plank", 1), entry(2, "Wood Log", 1), entry(11, "Stone", 1))

	// 2 and 11 share a digit sum.
	recipes := []crafting.Recipe{
		consuming(1, crafting.ConsumedItem{ID: 11, Quantity: 1}),
		consuming(1, crafting.ConsumedItem{ID: 404, Quantity: 1}),
		consuming(1, crafting.ConsumedItem{ID: 2, Quantity: 1}),
		consuming(1),
		consuming(1, crafting.ConsumedItem{ID: 11, Quantity: 2}),
	}
	r.Sort(1, recipes)

	require.Len(t, recipes, 5)
	assert.Equal(t, crafting.UnifiedID(11), recipes[0].ConsumedItems[0].ID)
	assert.Equal(t, crafting.UnifiedID(2), recipes[1].ConsumedItems[0].ID)
	assert.Equal(t, crafting.UnifiedID(11), recipes[2].ConsumedItems[0].ID)
	assert.Equal(t, crafting.UnifiedID(404), recipes[3].ConsumedItems[0].ID)
	assert.Empty(t, recipes[4].ConsumedItems)
}

func TestDigitSum(t *testing.T) {
	assert.Equal(t, 0, digitSum(0))
	assert.Equal(t, 9, digitSum(45))
	assert.Equal(t, 4+2+9+4+9+6+7+2+9+5, digitSum(crafting.CargoOffset))
}
