// Package config holds the classification and ordering tables used to build
// the crafting catalog.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rsned/crafting-data/pkg/crafting"
)

// Config drives item filtering, bundle detection and recipe ordering.
//
// Tag and name classification is plain substring matching against the
// export's free-text fields. It is intentionally loose.
type Config struct {
	// IgnoredTags drops every item whose tag contains one of these.
	IgnoredTags []string `yaml:"ignored_tags"`

	// RecipeUnlockMarkers keep an item that is neither craftable nor
	// extractable when its name contains one of these.
	RecipeUnlockMarkers []string `yaml:"recipe_unlock_markers"`

	// RecipeOrderOverrides ranks recipes of a target by the position of a
	// consumed unified id in the list.
	RecipeOrderOverrides map[crafting.UnifiedID][]crafting.UnifiedID `yaml:"recipe_order_overrides"`

	// TagOrderOverrides ranks recipes of targets with the given tag by the
	// position of a consumed item's tag in the list.
	TagOrderOverrides map[string][]string `yaml:"tag_order_overrides"`

	ToolTag           string `yaml:"tool_tag"`
	ScrapTag          string `yaml:"scrap_tag"`
	BundleExcludedTag string `yaml:"bundle_excluded_tag"`

	// SkillCacheSize bounds the extraction skill lookup cache.
	SkillCacheSize int `yaml:"skill_cache_size"`
}

// Default returns the built-in tables.
func Default() Config {
	return Config{
		IgnoredTags: []string{
			"DEVELOPER ITEM",
			"Crushed Ore",
			"Precious",
			"Cosmetic Clothes",
			"Letter",
			"Journal Page",
			"Ancient Research",
		},
		RecipeUnlockMarkers: []string{"Recipe:", "Diagram", "Carvings"},
		// Carvings sort before diagrams.
		RecipeOrderOverrides: map[crafting.UnifiedID][]crafting.UnifiedID{
			1210004: {1210037, 1210038},
			2210004: {2210037, 2210038},
			3210004: {3210037, 3210038},
			4210004: {4210037, 4210038},
			5210004: {5210037, 5210038},
			6210004: {6210037, 6210038},
		},
		TagOrderOverrides: map[string][]string{
			"Fertilizer": {"Berry", "Flower", "Lake Fish Filet", "Oceanfish Filet", "Raw Meat", "Food Waste"},
			"Catalyst":   {"Grain Seeds", "Filament Seeds", "Vegetable Seeds"},
		},
		ToolTag:           "Tool",
		ScrapTag:          "Scrap",
		BundleExcludedTag: "Crushed Ore",
		SkillCacheSize:    4096,
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default value; lists replace the default list and override maps
// merge into the default map.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects tables that would match every tag or name.
func (c Config) Validate() error {
	var errs []error
	for _, t := range c.IgnoredTags {
		if strings.TrimSpace(t) == "" {
			errs = append(errs, errors.New("ignored_tags: empty entry"))
		}
	}
	for _, m := range c.RecipeUnlockMarkers {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, errors.New("recipe_unlock_markers: empty entry"))
		}
	}
	if c.ToolTag == "" {
		errs = append(errs, errors.New("tool_tag: required"))
	}
	if c.ScrapTag == "" {
		errs = append(errs, errors.New("scrap_tag: required"))
	}
	if c.SkillCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("skill_cache_size: must be positive, got %d", c.SkillCacheSize))
	}
	return errors.Join(errs...)
}

// IsIgnoredTag reports whether tag contains an ignored substring.
func (c Config) IsIgnoredTag(tag string) bool {
	return containsAny(tag, c.IgnoredTags)
}

// IsRecipeUnlock reports whether name contains a recipe-unlock marker.
func (c Config) IsRecipeUnlock(name string) bool {
	return containsAny(name, c.RecipeUnlockMarkers)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
