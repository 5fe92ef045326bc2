package engine

import (
	"github.com/rsned/crafting-data/pkg/crafting"
)

// mergedPossibilities accumulates, per target, the probability of each
// output quantity. Targets keep the order they were first seen in.
type mergedPossibilities struct {
	order   []crafting.UnifiedID
	targets map[crafting.UnifiedID]crafting.Possibilities
}

func newMergedPossibilities() *mergedPossibilities {
	return &mergedPossibilities{targets: make(map[crafting.UnifiedID]crafting.Possibilities)}
}

// add credits probability to (target, quantity). Independent outcomes that
// yield the same pair add up.
func (m *mergedPossibilities) add(target crafting.UnifiedID, quantity int, probability float64) {
	p, ok := m.targets[target]
	if !ok {
		p = crafting.Possibilities{}
		m.targets[target] = p
		m.order = append(m.order, target)
	}
	p[quantity] += probability
}

// isBundle reports whether the item is a loot-table indirection rather than
// a real object.
func (b *Builder) isBundle(item crafting.ItemDesc) bool {
	return item.Tag != b.cfg.BundleExcludedTag && item.ItemListID != 0 && item.Tier < 0
}

// findItemList returns the first item list with the given id.
func (b *Builder) findItemList(listID uint64) (crafting.ItemListDesc, bool) {
	for _, list := range b.tables.ItemLists {
		if list.ID == listID {
			return list, true
		}
	}
	return crafting.ItemListDesc{}, false
}

// expandBundles removes every bundle entry from the catalog and hands the
// bundle's recipes to each entity the bundle can yield, tagged with the
// merged probabilities of that entity's quantities.
func (b *Builder) expandBundles(catalog *crafting.Catalog) error {
	var expanded int
	for _, item := range b.tables.Items {
		if !b.isBundle(item) {
			continue
		}

		bundleID, err := crafting.ToUnified(item.ID, crafting.CategoryItem)
		if err != nil {
			return err
		}
		// Bundles filtered out while collecting have nothing to hand out.
		if !catalog.Delete(bundleID) {
			continue
		}

		list, ok := b.findItemList(item.ItemListID)
		if !ok {
			b.logger.Debug("bundle references unknown item list", "bundle", bundleID, "item_list", item.ItemListID)
			continue
		}

		merged, err := b.mergeItemList(catalog, item, list)
		if err != nil {
			return err
		}

		recipes, err := b.FindRecipes(item.ID, crafting.CategoryItem)
		if err != nil {
			return err
		}

		for _, target := range merged.order {
			entry := catalog.Get(target)
			for _, r := range recipes {
				// A variant must not consume what it yields.
				if r.Consumes(target) {
					continue
				}
				variant := r.Clone()
				variant.Possibilities = merged.targets[target].Clone()
				entry.Recipes = append(entry.Recipes, variant)
			}
		}
		expanded++
	}

	b.logger.Debug("bundles expanded", "count", expanded)
	return nil
}

// mergeItemList folds every possibility of the list into per-target
// probability tables. Targets missing from the catalog are ignored. A
// target without an extraction skill inherits the bundle's.
func (b *Builder) mergeItemList(catalog *crafting.Catalog, bundle crafting.ItemDesc, list crafting.ItemListDesc) (*mergedPossibilities, error) {
	merged := newMergedPossibilities()

	for _, possibility := range list.Possibilities {
		for _, stack := range possibility.Items {
			target, err := stackID(stack)
			if err != nil {
				return nil, err
			}
			entry := catalog.Get(target)
			if entry == nil {
				continue
			}

			if !entry.HasExtractionSkill() {
				entry.ExtractionSkill = b.skills.Find(bundle.ID, crafting.CategoryItem)
			}

			merged.add(target, stack.Quantity, possibility.Probability)
		}
	}

	return merged, nil
}
