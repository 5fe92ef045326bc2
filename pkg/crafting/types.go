// Package crafting contains the core types for the crafting catalog builder.
package crafting

// ============================================
// RAW EXPORT TYPES
// ============================================

// Category is the item_type of a stack in the export tables.
type Category string

const (
	CategoryItem  Category = "Item"
	CategoryCargo Category = "Cargo"
)

// IsValid checks if the category is one of the two known spaces.
func (c Category) IsValid() bool {
	return c == CategoryItem || c == CategoryCargo
}

// ItemStack is a (id, type, quantity) reference used by every table.
type ItemStack struct {
	ItemID   uint64   `json:"item_id"`
	ItemType Category `json:"item_type"`
	Quantity int      `json:"quantity"`
}

// Matches reports whether the stack refers to the given local id and category.
func (s ItemStack) Matches(localID uint64, category Category) bool {
	return s.ItemID == localID && s.ItemType == category
}

// LevelRequirement is a single skill/level alternative.
type LevelRequirement struct {
	SkillID int `json:"skill_id"`
	Level   int `json:"level"`
}

// ItemDesc is a row of item_desc.json.
type ItemDesc struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Tier          int    `json:"tier"`
	Rarity        string `json:"rarity"`
	Tag           string `json:"tag"`
	IconAssetName string `json:"icon_asset_name"`
	ItemListID    uint64 `json:"item_list_id"`
}

// CargoDesc is a row of cargo_desc.json.
type CargoDesc struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Tier          int    `json:"tier"`
	Rarity        string `json:"rarity"`
	Tag           string `json:"tag"`
	IconAssetName string `json:"icon_asset_name"`
}

// CraftingRecipeDesc is a row of crafting_recipe_desc.json.
type CraftingRecipeDesc struct {
	ID                 uint64             `json:"id"`
	Name               string             `json:"name"`
	LevelRequirements  []LevelRequirement `json:"level_requirements"`
	ConsumedItemStacks []ItemStack        `json:"consumed_item_stacks"`
	CraftedItemStacks  []ItemStack        `json:"crafted_item_stacks"`
}

// ExtractedStack wraps an item stack one level deep, as the extraction and
// enemy tables do.
type ExtractedStack struct {
	ItemStack *ItemStack `json:"item_stack"`
}

// ExtractionRecipeDesc is a row of extraction_recipe_desc.json.
type ExtractionRecipeDesc struct {
	ID                  uint64             `json:"id"`
	LevelRequirements   []LevelRequirement `json:"level_requirements"`
	ExtractedItemStacks []ExtractedStack   `json:"extracted_item_stacks"`
}

// ExperienceRate names the skill credited for damaging an enemy.
type ExperienceRate struct {
	SkillID int `json:"skill_id"`
}

// EnemyDesc is a row of enemy_desc.json.
type EnemyDesc struct {
	EnemyType                int              `json:"enemy_type"`
	Name                     string           `json:"name"`
	ExtractedItemStacks      []ExtractedStack `json:"extracted_item_stacks"`
	ExperiencePerDamageDealt []ExperienceRate `json:"experience_per_damage_dealt"`
}

// ItemListPossibility is one weighted outcome of an item list.
type ItemListPossibility struct {
	Probability float64     `json:"probability"`
	Items       []ItemStack `json:"items"`
}

// ItemListDesc is a row of item_list_desc.json.
type ItemListDesc struct {
	ID            uint64                `json:"id"`
	Name          string                `json:"name"`
	Possibilities []ItemListPossibility `json:"possibilities"`
}

// Tables holds every export table for one build, in file order.
type Tables struct {
	Items             []ItemDesc
	Cargo             []CargoDesc
	CraftingRecipes   []CraftingRecipeDesc
	ExtractionRecipes []ExtractionRecipeDesc
	ItemLists         []ItemListDesc
	Enemies           []EnemyDesc
}

// ============================================
// CATALOG TYPES
// ============================================

// SkillNotFound marks an entity with no extraction skill.
const SkillNotFound = -1

// ConsumedItem is an input of a recipe in unified id space.
type ConsumedItem struct {
	ID       UnifiedID `json:"id"`
	Quantity int       `json:"quantity"`
}

// Recipe is one way to obtain a catalog entry.
type Recipe struct {
	LevelRequirements LevelRequirement `json:"level_requirements"`
	ConsumedItems     []ConsumedItem   `json:"consumed_items"`
	OutputQuantity    int              `json:"output_quantity"`
	Possibilities     Possibilities    `json:"possibilities"`
}

// Consumes reports whether id appears among the consumed items.
func (r Recipe) Consumes(id UnifiedID) bool {
	for _, ci := range r.ConsumedItems {
		if ci.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	out := r
	out.ConsumedItems = make([]ConsumedItem, len(r.ConsumedItems))
	copy(out.ConsumedItems, r.ConsumedItems)
	out.Possibilities = r.Possibilities.Clone()
	return out
}

// CatalogEntry is a single craftable or obtainable entity.
type CatalogEntry struct {
	ID              UnifiedID `json:"-"`
	Name            string    `json:"name"`
	Tier            int       `json:"tier"`
	Rarity          int       `json:"rarity"`
	Icon            string    `json:"icon"`
	Recipes         []Recipe  `json:"recipes"`
	ExtractionSkill int       `json:"extraction_skill"`
	Tag             string    `json:"tag"`
}

// HasExtractionSkill reports whether the entry resolved an extraction skill.
func (e *CatalogEntry) HasExtractionSkill() bool {
	return e.ExtractionSkill != SkillNotFound
}

// RarityOrdinal maps a rarity name to 1..5. Unknown names are Common.
func RarityOrdinal(name string) int {
	switch name {
	case "Common":
		return 1
	case "Uncommon":
		return 2
	case "Rare":
		return 3
	case "Epic":
		return 4
	case "Legendary":
		return 5
	default:
		return 1
	}
}

// ============================================
// LOOKUP TYPES
// ============================================

// EntryLookupRequest is the input for the catalog_lookup tool.
type EntryLookupRequest struct {
	ID UnifiedID `json:"id"`
}

// EntryLookupResponse is the output for the catalog_lookup tool.
type EntryLookupResponse struct {
	ID       UnifiedID     `json:"id"`
	IsCargo  bool          `json:"is_cargo"`
	Entry    *CatalogEntry `json:"entry,omitempty"`
	UsedIn   []UnifiedID   `json:"used_in,omitempty"`
	NotFound bool          `json:"not_found,omitempty"`
}

// EntrySearchRequest is the input for the catalog_search tool.
type EntrySearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// EntrySearchHit is a lightweight match for search results.
type EntrySearchHit struct {
	ID       UnifiedID `json:"id"`
	Name     string    `json:"name"`
	Tag      string    `json:"tag"`
	Distance int       `json:"distance"`
}

// EntrySearchResponse is the output for the catalog_search tool.
type EntrySearchResponse struct {
	Query string           `json:"query"`
	Hits  []EntrySearchHit `json:"hits"`
}

// CatalogStats summarizes the last build stored in the database.
type CatalogStats struct {
	Entries   int    `json:"entries"`
	Recipes   int    `json:"recipes"`
	LastBuild string `json:"last_build,omitempty"`
	RunID     string `json:"run_id,omitempty"`
}
