// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package catalog

// CategoryFilter is the resolved form of a Selection: either "no filter"
// or an exact set of category IDs to match products against.
type CategoryFilter struct {
	ids map[int64]struct{} // nil means no category filter
}

// NoFilter reports whether the filter admits every product.
func (f CategoryFilter) NoFilter() bool {
	return f.ids == nil
}

// Matches reports whether a product passes the category filter. Products
// without a category only pass when no filter is active.
func (f CategoryFilter) Matches(p Product) bool {
	if f.ids == nil {
		return true
	}
	if p.CategoryID == nil {
		return false
	}
	_, ok := f.ids[*p.CategoryID]
	return ok
}

// IDs returns the resolved category IDs, or nil when no filter is active.
func (f CategoryFilter) IDs() []int64 {
	if f.ids == nil {
		return nil
	}
	out := make([]int64, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	return out
}

func exactSet(ids ...int64) CategoryFilter {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return CategoryFilter{ids: set}
}

// ResolveSelection converts the three-tier category selection into one
// concrete CategoryFilter. Stale state self-heals: a main-category ID that
// no longer exists in the hierarchy (or a nil hierarchy) degrades that tier
// to "no filter" and resolution falls through to the next tier instead of
// failing the whole pass.
func ResolveSelection(sel Selection, hierarchy []Category) CategoryFilter {
	// Tier 1: explicit multi-select, applied verbatim.
	if len(sel.SelectedIDs) > 0 {
		return exactSet(sel.SelectedIDs...)
	}

	// Tier 2: main-category pick, expanded to the category plus all of its
	// subcategories. Falls through when the ID is stale.
	if sel.MainCategoryID != nil {
		for _, c := range hierarchy {
			if c.ID != *sel.MainCategoryID {
				continue
			}
			ids := make([]int64, 0, len(c.Subcategories)+1)
			ids = append(ids, c.ID)
			for _, sub := range c.Subcategories {
				ids = append(ids, sub.ID)
			}
			return exactSet(ids...)
		}
	}

	// Tier 3: legacy single-select.
	if sel.CurrentID != nil {
		return exactSet(*sel.CurrentID)
	}

	return CategoryFilter{}
}
