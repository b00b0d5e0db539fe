// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package catalog

import (
	"sort"
	"strings"
	"time"
)

// newItemWindow is how far back CreatedAt may lie for a product to still
// count as "new".
const newItemWindow = 30 * 24 * time.Hour

// Apply runs the full filter pass: category resolution, the AND-combined
// predicate filters, and sorting. The input slice is never mutated; the
// returned slice preserves the input's relative order unless a price sort
// is requested.
func Apply(products []Product, state FilterState, sel Selection, hierarchy []Category) []Product {
	return applyAt(time.Now(), products, state, sel, hierarchy)
}

// applyAt is Apply with an injectable clock for the new-items window.
func applyAt(now time.Time, products []Product, state FilterState, sel Selection, hierarchy []Category) []Product {
	catFilter := ResolveSelection(sel, hierarchy)
	ranges := ComputeRanges(products)

	// The id-rank fallback for "new" is a property of the whole snapshot,
	// so it is computed against the full list before any filtering.
	var recent map[int64]struct{}
	if state.NewItems {
		recent = recentByID(products)
	}

	query := strings.ToLower(strings.TrimSpace(state.Search))

	result := make([]Product, 0, len(products))
	for _, p := range products {
		if !catFilter.Matches(p) {
			continue
		}
		if state.Price != "" && state.Price != BandAll {
			price, ok := EffectivePrice(p)
			if !ok || !ranges.InBand(state.Price, price) {
				continue
			}
		}
		if state.InStock && !inStock(p) {
			continue
		}
		if state.HotOffer && !p.HotOffer {
			continue
		}
		if state.WithDiscount && p.Discount <= 0 {
			continue
		}
		if state.MadeToOrder && !(p.MadeToOrder && !p.ForSale) {
			continue
		}
		if state.NewItems && !isNew(now, p, recent) {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		result = append(result, p)
	}

	sortProducts(result, state.SortBy)
	return result
}

// inStock reports plain-stock availability. Made-to-order products are
// produced on demand and for-sale products follow a separate quantity
// model, so neither counts as stocked.
func inStock(p Product) bool {
	if p.MadeToOrder || p.ForSale {
		return false
	}
	return p.Quantity != nil && *p.Quantity > 0
}

// isNew reports whether a product counts as "new": CreatedAt within the
// window when present, membership in the top-20%-by-ID slice otherwise.
func isNew(now time.Time, p Product, recent map[int64]struct{}) bool {
	if p.CreatedAt != nil {
		return now.Sub(*p.CreatedAt) <= newItemWindow
	}
	_, ok := recent[p.ID]
	return ok
}

// recentByID ranks the full product list by descending ID and returns the
// top 20% (minimum one) as the relative-recency fallback for products
// without a creation timestamp.
func recentByID(products []Product) map[int64]struct{} {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	n := len(ids) / 5
	if n < 1 {
		n = 1
	}
	top := make(map[int64]struct{}, n)
	for _, id := range ids[:n] {
		top[id] = struct{}{}
	}
	return top
}

// matchesQuery does a case-insensitive substring match against name or
// description. The query is already lower-cased and trimmed.
func matchesQuery(p Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

// sortProducts orders the filtered result by effective price. SortNone
// leaves the input order untouched. Products without a usable price sort
// as the lowest key, keeping the comparator total.
func sortProducts(products []Product, order SortOrder) {
	if order != SortPriceAsc && order != SortPriceDesc {
		return
	}
	key := func(p Product) float64 {
		price, ok := EffectivePrice(p)
		if !ok {
			return 0
		}
		return price
	}
	sort.SliceStable(products, func(i, j int) bool {
		if order == SortPriceAsc {
			return key(products[i]) < key(products[j])
		}
		return key(products[i]) > key(products[j])
	})
}
