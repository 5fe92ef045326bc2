package engine

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/rsned/crafting-data/internal/crafting/config"
	"github.com/rsned/crafting-data/pkg/crafting"
)

const (
	// LowestPriority sorts a recipe after every computed key.
	LowestPriority = 999999
	// ScrapToolBonus pushes scrap-based tool recipes behind the others.
	ScrapToolBonus = 10000

	cargoQuantityWeight = 1000
)

var (
	errMissingConsumedItem = errors.New("consumed item not in catalog")
	errBadOutputQuantity   = errors.New("output quantity is not positive")
)

// Ranker computes recipe sort keys for one catalog. Lower keys sort first.
type Ranker struct {
	catalog *crafting.Catalog
	cfg     config.Config
	logger  *slog.Logger
}

// NewRanker creates a Ranker that reads tags and rarities from catalog.
func NewRanker(catalog *crafting.Catalog, cfg config.Config, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{catalog: catalog, cfg: cfg, logger: logger}
}

// Priority returns the sort key of recipe within target's recipe list.
//
// Rules, first applicable wins:
//  1. an explicit per-target override list containing a consumed id;
//  2. a per-tag override list containing a consumed item's tag;
//  3. no consumed items sorts last;
//  4. the default formula over the first consumed item, plus ScrapToolBonus
//     for tool targets consuming scrap.
//
// Anything the formula can not compute sorts last with a warning.
func (r *Ranker) Priority(target crafting.UnifiedID, recipe crafting.Recipe) float64 {
	if order, ok := r.cfg.RecipeOrderOverrides[target]; ok {
		for _, ci := range recipe.ConsumedItems {
			if i := slices.Index(order, ci.ID); i >= 0 {
				return float64(i)
			}
		}
	}

	targetTag := r.tagOf(target)
	if order, ok := r.cfg.TagOrderOverrides[targetTag]; ok {
		for _, ci := range recipe.ConsumedItems {
			if i := slices.Index(order, r.tagOf(ci.ID)); i >= 0 {
				return float64(i)
			}
		}
	}

	var bonus float64
	if strings.Contains(targetTag, r.cfg.ToolTag) && r.consumesTag(recipe, r.cfg.ScrapTag) {
		bonus = ScrapToolBonus
	}

	if len(recipe.ConsumedItems) == 0 {
		return LowestPriority
	}

	key, err := r.defaultKey(recipe, bonus)
	if err != nil {
		r.logger.Warn("using lowest recipe priority", "target", target, "error", err)
		return LowestPriority
	}
	return key
}

// Sort orders recipes in place by Priority. Equal keys keep their order.
func (r *Ranker) Sort(target crafting.UnifiedID, recipes []crafting.Recipe) {
	type ranked struct {
		key    float64
		recipe crafting.Recipe
	}

	keyed := make([]ranked, len(recipes))
	for i, rec := range recipes {
		keyed[i] = ranked{key: r.Priority(target, rec), recipe: rec}
	}
	slices.SortStableFunc(keyed, func(a, b ranked) int {
		return cmp.Compare(a.key, b.key)
	})
	for i := range keyed {
		recipes[i] = keyed[i].recipe
	}
}

// defaultKey is (quantity + cargo weight) * rarity * 100 / output quantity
// + digit sum of the id, over the first consumed item.
func (r *Ranker) defaultKey(recipe crafting.Recipe, bonus float64) (float64, error) {
	first := recipe.ConsumedItems[0]

	entry := r.catalog.Get(first.ID)
	if entry == nil {
		return 0, fmt.Errorf("%w: %s", errMissingConsumedItem, first.ID)
	}
	if recipe.OutputQuantity <= 0 {
		return 0, fmt.Errorf("%w: %d", errBadOutputQuantity, recipe.OutputQuantity)
	}

	quantity := float64(first.Quantity)
	if first.ID.IsCargo() {
		quantity += cargoQuantityWeight
	}

	key := quantity * float64(entry.Rarity) * 100 / float64(recipe.OutputQuantity)
	return key + float64(digitSum(first.ID)) + bonus, nil
}

func (r *Ranker) consumesTag(recipe crafting.Recipe, tag string) bool {
	for _, ci := range recipe.ConsumedItems {
		if e := r.catalog.Get(ci.ID); e != nil && e.Tag == tag {
			return true
		}
	}
	return false
}

// tagOf returns the tag of id, or "" when id is not in the catalog.
func (r *Ranker) tagOf(id crafting.UnifiedID) string {
	if e := r.catalog.Get(id); e != nil {
		return e.Tag
	}
	return ""
}

func digitSum(id crafting.UnifiedID) int {
	n := uint64(id)
	sum := 0
	for n > 0 {
		sum += int(n % 10)
		n /= 10
	}
	return sum
}
