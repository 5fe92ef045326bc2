package engine

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rsned/crafting-data/pkg/crafting"
)

type skillKey struct {
	localID  uint64
	category crafting.Category
}

// SkillResolver finds the skill used to obtain an entity without crafting
// it. Lookups are memoized since bundle expansion repeats them.
type SkillResolver struct {
	extraction []crafting.ExtractionRecipeDesc
	enemies    []crafting.EnemyDesc
	cache      *lru.Cache[skillKey, int]
}

// NewSkillResolver creates a resolver over the extraction and enemy tables.
func NewSkillResolver(tables *crafting.Tables, cacheSize int) (*SkillResolver, error) {
	cache, err := lru.New[skillKey, int](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating skill cache: %w", err)
	}
	return &SkillResolver{
		extraction: tables.ExtractionRecipes,
		enemies:    tables.Enemies,
		cache:      cache,
	}, nil
}

// Find returns the extraction skill for the entity, or crafting.SkillNotFound.
//
// Extraction recipes are searched first, then enemy drops. The first
// matching record in table order wins.
func (r *SkillResolver) Find(localID uint64, category crafting.Category) int {
	key := skillKey{localID: localID, category: category}
	if skill, ok := r.cache.Get(key); ok {
		return skill
	}

	skill, ok := r.fromExtraction(localID, category)
	if !ok {
		skill, ok = r.fromEnemies(localID, category)
	}
	if !ok {
		skill = crafting.SkillNotFound
	}

	r.cache.Add(key, skill)
	return skill
}

// Records without skill information are passed over.
func (r *SkillResolver) fromExtraction(localID uint64, category crafting.Category) (int, bool) {
	for _, rec := range r.extraction {
		if len(rec.LevelRequirements) == 0 {
			continue
		}
		if extracts(rec.ExtractedItemStacks, localID, category) {
			return rec.LevelRequirements[0].SkillID, true
		}
	}
	return 0, false
}

func (r *SkillResolver) fromEnemies(localID uint64, category crafting.Category) (int, bool) {
	for _, enemy := range r.enemies {
		if len(enemy.ExperiencePerDamageDealt) == 0 {
			continue
		}
		if extracts(enemy.ExtractedItemStacks, localID, category) {
			return enemy.ExperiencePerDamageDealt[0].SkillID, true
		}
	}
	return 0, false
}

func extracts(stacks []crafting.ExtractedStack, localID uint64, category crafting.Category) bool {
	for _, s := range stacks {
		if s.ItemStack != nil && s.ItemStack.Matches(localID, category) {
			return true
		}
	}
	return false
}
