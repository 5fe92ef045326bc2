package engine

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/rsned/crafting-data/pkg/crafting"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// Lookup executes the catalog_lookup tool logic.
func (e *Engine) Lookup(ctx context.Context, req crafting.EntryLookupRequest) (*crafting.EntryLookupResponse, error) {
	resp := &crafting.EntryLookupResponse{
		ID:      req.ID,
		IsCargo: req.ID.IsCargo(),
	}

	entry, err := e.catalog.GetEntry(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		resp.NotFound = true
		return resp, nil
	}
	resp.Entry = entry

	// Entries whose recipes take this one as an input
	usedIn, err := e.catalog.FindEntriesConsuming(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	resp.UsedIn = usedIn

	return resp, nil
}

// Search executes the catalog_search tool logic.
//
// Names containing the query rank first (distance 0), in catalog order.
// The remaining names are compared to the query by edit distance and kept
// when close enough for the query's length.
func (e *Engine) Search(ctx context.Context, req crafting.EntrySearchRequest) (*crafting.EntrySearchResponse, error) {
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}
	if req.Limit > maxSearchLimit {
		req.Limit = maxSearchLimit
	}
	query := strings.TrimSpace(req.Query)
	resp := &crafting.EntrySearchResponse{Query: query, Hits: []crafting.EntrySearchHit{}}
	if query == "" {
		return resp, nil
	}

	exact, err := e.catalog.SearchEntries(ctx, query, req.Limit)
	if err != nil {
		return nil, err
	}
	resp.Hits = append(resp.Hits, exact...)
	if len(resp.Hits) >= req.Limit {
		return resp, nil
	}

	seen := make(map[crafting.UnifiedID]bool, len(exact))
	for _, h := range exact {
		seen[h.ID] = true
	}

	all, err := e.catalog.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	limit := fuzzyLimit(utf8.RuneCountInString(needle))

	var fuzzy []crafting.EntrySearchHit
	for _, h := range all {
		if seen[h.ID] {
			continue
		}
		dist := nameDistance(needle, strings.ToLower(h.Name))
		if dist > limit {
			continue
		}
		h.Distance = dist
		fuzzy = append(fuzzy, h)
	}
	sort.SliceStable(fuzzy, func(i, j int) bool {
		return fuzzy[i].Distance < fuzzy[j].Distance
	})

	for _, h := range fuzzy {
		if len(resp.Hits) >= req.Limit {
			break
		}
		resp.Hits = append(resp.Hits, h)
	}

	return resp, nil
}

// nameDistance is the smallest edit distance between the query and the
// whole name or any run of len(query words) consecutive name words.
func nameDistance(query, name string) int {
	best := levenshtein.ComputeDistance(query, name)

	qWords := len(strings.Fields(query))
	words := strings.Fields(name)
	for i := 0; i+qWords <= len(words); i++ {
		d := levenshtein.ComputeDistance(query, strings.Join(words[i:i+qWords], " "))
		if d < best {
			best = d
		}
	}
	return best
}

func fuzzyLimit(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}
