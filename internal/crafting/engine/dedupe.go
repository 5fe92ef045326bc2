package engine

import (
	"encoding/json"
	"fmt"

	"github.com/rsned/crafting-data/pkg/crafting"
)

// DedupeRecipes drops recipes whose canonical serialization matches an
// earlier one. The first occurrence is kept and relative order preserved.
func DedupeRecipes(recipes []crafting.Recipe) ([]crafting.Recipe, error) {
	seen := make(map[string]struct{}, len(recipes))
	out := make([]crafting.Recipe, 0, len(recipes))

	for _, r := range recipes {
		key, err := canonicalKey(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	return out, nil
}

// canonicalKey relies on encoding/json emitting struct fields in
// declaration order and map keys sorted.
func canonicalKey(r crafting.Recipe) (string, error) {
	if r.ConsumedItems == nil {
		r.ConsumedItems = []crafting.ConsumedItem{}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("serializing recipe: %w", err)
	}
	return string(b), nil
}
