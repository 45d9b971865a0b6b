// Package shopping derives a household's weekly shopping list from the
// ingredients of accepted meal tasks.
package shopping

import (
	"sort"
	"strings"

	"github.com/homesync/homesync-backend/internal/types"
)

// CategoryOrder is the display order of the returned list.
var CategoryOrder = []string{"produce", "meat", "dairy", "grains", "pantry", "other"}

// mergeKey deduplicates ingredients: name is lowercased and trimmed, unit is
// compared verbatim. "flour g" and "flour kg" never merge; a nil unit merges
// only with another unspecified unit.
type mergeKey struct {
	name string
	unit string
}

func keyOf(ing types.Ingredient) mergeKey {
	unit := ""
	if ing.Unit != nil {
		unit = *ing.Unit
	}
	return mergeKey{name: strings.ToLower(strings.TrimSpace(ing.Name)), unit: unit}
}

// Aggregate flattens the ingredient lists of the given meal tasks into one
// deduplicated list. Quantities sharing a merge key are summed; a nil quantity
// contributes nothing but does not poison the sum (nil+3 = 3, nil+nil = nil).
// Name, unit and category are taken from the first occurrence. Output order is
// first-occurrence order, so the result is deterministic for a fixed input.
func Aggregate(tasks []*types.Task) []types.Ingredient {
	merged := make(map[mergeKey]*types.Ingredient)
	var order []mergeKey
	for _, task := range tasks {
		for _, ing := range task.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				continue
			}
			k := keyOf(ing)
			existing, ok := merged[k]
			if !ok {
				cp := ing
				if ing.Quantity != nil {
					q := *ing.Quantity
					cp.Quantity = &q
				}
				if ing.Category == "" {
					cp.Category = "other"
				}
				merged[k] = &cp
				order = append(order, k)
				continue
			}
			if ing.Quantity == nil {
				continue
			}
			if existing.Quantity == nil {
				q := *ing.Quantity
				existing.Quantity = &q
			} else {
				*existing.Quantity += *ing.Quantity
			}
		}
	}
	out := make([]types.Ingredient, 0, len(order))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	return out
}

// ExcludeChecked drops aggregated lines whose lowercased name appears in the
// preserved set, so re-syncing never resurrects a checked item as unchecked.
func ExcludeChecked(lines []types.Ingredient, checkedNames map[string]bool) []types.Ingredient {
	if len(checkedNames) == 0 {
		return lines
	}
	out := lines[:0:0]
	for _, l := range lines {
		if checkedNames[strings.ToLower(strings.TrimSpace(l.Name))] {
			continue
		}
		out = append(out, l)
	}
	return out
}

// SortItems orders a persisted list for display: category order, then name.
func SortItems(items []*types.ShoppingItem) {
	rank := make(map[string]int, len(CategoryOrder))
	for i, c := range CategoryOrder {
		rank[c] = i
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri, ok := rank[items[i].Category]
		if !ok {
			ri = len(CategoryOrder)
		}
		rj, ok := rank[items[j].Category]
		if !ok {
			rj = len(CategoryOrder)
		}
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
