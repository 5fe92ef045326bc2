package crafting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Possibilities maps an alternate output quantity to the cumulative
// probability of receiving it. Deterministic recipes leave it empty.
type Possibilities map[int]float64

// Clone returns a copy that never aliases p. A nil map clones to an empty one.
func (p Possibilities) Clone() Possibilities {
	out := make(Possibilities, len(p))
	maps.Copy(out, p)
	return out
}

// MarshalJSON encodes a nil map as {} so recipes serialize identically
// whether or not the map was allocated.
func (p Possibilities) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[int]float64(p))
}

// Catalog is the insertion-ordered registry of catalog entries shared by
// every build phase.
type Catalog struct {
	entries map[UnifiedID]*CatalogEntry
	order   []UnifiedID
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[UnifiedID]*CatalogEntry)}
}

// Put adds or replaces the entry under e.ID. Replacing keeps the original
// position.
func (c *Catalog) Put(e *CatalogEntry) {
	if _, ok := c.entries[e.ID]; !ok {
		c.order = append(c.order, e.ID)
	}
	c.entries[e.ID] = e
}

// Get returns the entry for id, or nil.
func (c *Catalog) Get(id UnifiedID) *CatalogEntry {
	return c.entries[id]
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id UnifiedID) bool {
	_, ok := c.entries[id]
	return ok
}

// Delete removes id. It reports whether an entry was removed.
func (c *Catalog) Delete(id UnifiedID) bool {
	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return true
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.order)
}

// IDs returns the ids in insertion order.
func (c *Catalog) IDs() []UnifiedID {
	return slices.Clone(c.order)
}

// Each calls fn for every entry in insertion order.
func (c *Catalog) Each(fn func(e *CatalogEntry)) {
	for _, id := range c.order {
		fn(c.entries[id])
	}
}

// RecipeCount returns the number of recipes across all entries.
func (c *Catalog) RecipeCount() int {
	n := 0
	for _, e := range c.entries {
		n += len(e.Recipes)
	}
	return n
}

// MarshalJSON encodes the catalog as one object keyed by decimal unified id,
// in insertion order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(id.String()))
		buf.WriteByte(':')
		b, err := json.Marshal(c.entries[id])
		if err != nil {
			return nil, fmt.Errorf("marshaling entry %s: %w", id, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object written by MarshalJSON, keeping the key
// order of the document.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("catalog: expected object, got %v", tok)
	}
	*c = Catalog{entries: make(map[UnifiedID]*CatalogEntry)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return fmt.Errorf("catalog: bad key %q: %w", key, err)
		}
		var e CatalogEntry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("catalog: entry %s: %w", key, err)
		}
		e.ID = UnifiedID(id)
		c.Put(&e)
	}
	_, err = dec.Token()
	return err
}
