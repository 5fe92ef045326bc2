// Package icons maps export icon asset names onto the web asset tree.
package icons

import (
	"io/fs"
	"slices"
	"strings"

	"github.com/rsned/crafting-data/pkg/crafting"
)

const (
	generatedPrefix = "GeneratedIcons/"
	otherPrefix     = "Other/"
	buildingsPrefix = "Buildings/"
	assetExt        = ".webp"
)

// Normalize rewrites an export asset name into the web asset layout.
func Normalize(icon string) string {
	icon = strings.ReplaceAll(icon, generatedPrefix, "")
	icon = strings.ReplaceAll(icon, otherPrefix+otherPrefix, otherPrefix)
	if strings.HasPrefix(icon, buildingsPrefix) {
		icon = otherPrefix + icon
	}
	return icon
}

// Resolver checks normalized icon paths against an asset tree and remembers
// the ones it could not find.
type Resolver struct {
	assets  fs.FS
	missing map[string]struct{}
}

// NewResolver creates a Resolver over the asset tree rooted at assets.
func NewResolver(assets fs.FS) *Resolver {
	return &Resolver{assets: assets, missing: make(map[string]struct{})}
}

// Resolve returns the asset path to use for icon. The normalized path wins
// when its .webp file exists; otherwise the path with "Other/" removed is
// tried. When neither exists the normalized path is returned and recorded
// as missing.
func (r *Resolver) Resolve(icon string) string {
	icon = Normalize(icon)
	if r.exists(icon) {
		return icon
	}

	fallback := strings.ReplaceAll(icon, otherPrefix, "")
	if r.exists(fallback) {
		return fallback
	}

	r.missing[icon] = struct{}{}
	return icon
}

// Missing returns the sorted icons that could not be found.
func (r *Resolver) Missing() []string {
	out := make([]string, 0, len(r.missing))
	for icon := range r.missing {
		out = append(out, icon)
	}
	slices.Sort(out)
	return out
}

func (r *Resolver) exists(icon string) bool {
	name := icon + assetExt
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(r.assets, name)
	return err == nil && !info.IsDir()
}

// ResolveCatalog rewrites the icon of every entry and returns the sorted list
// of icons missing from the asset tree.
func (r *Resolver) ResolveCatalog(catalog *crafting.Catalog) []string {
	catalog.Each(func(e *crafting.CatalogEntry) {
		e.Icon = r.Resolve(e.Icon)
	})
	return r.Missing()
}

// NormalizeCatalog rewrites the icon of every entry without checking the
// asset tree.
func NormalizeCatalog(catalog *crafting.Catalog) {
	catalog.Each(func(e *crafting.CatalogEntry) {
		e.Icon = Normalize(e.Icon)
	})
}
