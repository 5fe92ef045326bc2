package crafting

import (
	"errors"
	"fmt"
	"strconv"
)

// CargoOffset shifts cargo ids so items and cargo share one id space.
const CargoOffset UnifiedID = 0xffffffff

var (
	// ErrIDOverflow means a local id would collide with the cargo range.
	ErrIDOverflow = errors.New("local id exceeds unified id range")
	// ErrUnknownCategory means an item_type other than Item or Cargo.
	ErrUnknownCategory = errors.New("unknown item category")
)

// UnifiedID identifies an item or cargo in the shared id space.
type UnifiedID uint64

// String returns the decimal form used as the output object key.
func (id UnifiedID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IsCargo reports whether the id lies in the cargo range.
func (id UnifiedID) IsCargo() bool {
	return id >= CargoOffset
}

// Split returns the local id and category the unified id was built from.
func (id UnifiedID) Split() (uint64, Category) {
	if id.IsCargo() {
		return uint64(id - CargoOffset), CategoryCargo
	}
	return uint64(id), CategoryItem
}

// ToUnified maps a local id of the given category into the unified space.
// A local id at or past CargoOffset can not be represented and is fatal for
// the build.
func ToUnified(localID uint64, category Category) (UnifiedID, error) {
	if localID >= uint64(CargoOffset) {
		return 0, fmt.Errorf("%s %d: %w", category, localID, ErrIDOverflow)
	}
	switch category {
	case CategoryItem:
		return UnifiedID(localID), nil
	case CategoryCargo:
		return CargoOffset + UnifiedID(localID), nil
	default:
		return 0, fmt.Errorf("%q for id %d: %w", category, localID, ErrUnknownCategory)
	}
}
