// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

// Package catalog implements the storefront's product filter composition
// engine: given an in-memory product snapshot, a filter state, a category
// selection, and the category hierarchy, it deterministically produces the
// ordered subset of products to display.
//
// The engine is a pure function of its inputs. It owns no state, performs
// no I/O, and degrades gracefully on malformed data (nil prices, stale
// category IDs, absent hierarchies) instead of failing.
package catalog

import (
	"time"
)

// Product is the engine's read-only view of a catalog product. Nullable
// fields are pointers; boolean-like fields are assumed already normalized
// at the ingestion boundary (see models.Flag).
type Product struct {
	ID          int64      `json:"id"`
	CategoryID  *int64     `json:"categoryId,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Discount    int        `json:"discount"`
	Quantity    *int       `json:"quantity,omitempty"`
	MadeToOrder bool       `json:"isMadeToOrder"`
	HotOffer    bool       `json:"isHotOffer"`
	ForSale     bool       `json:"isForSale"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

// Category is a node in the two-level category hierarchy. Subcategories
// never nest further.
type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Subcategories []Category `json:"subcategories,omitempty"`
}

// Band selects one of the adaptive price buckets.
type Band string

const (
	BandAll    Band = "all"
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// ParseBand maps a raw query value onto a Band, defaulting to BandAll for
// anything unrecognized.
func ParseBand(s string) Band {
	switch Band(s) {
	case BandLow, BandMedium, BandHigh:
		return Band(s)
	default:
		return BandAll
	}
}

// SortOrder selects the result ordering.
type SortOrder string

const (
	SortNone      SortOrder = "none"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
)

// ParseSortOrder maps a raw query value onto a SortOrder, defaulting to
// SortNone for anything unrecognized.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortPriceAsc, SortPriceDesc:
		return SortOrder(s)
	default:
		return SortNone
	}
}

// FilterState holds every independently togglable filter dimension. The
// zero value means "no filtering, original order".
type FilterState struct {
	Price        Band      `json:"price"`
	InStock      bool      `json:"inStock"`
	HotOffer     bool      `json:"hotOffer"`
	WithDiscount bool      `json:"withDiscount"`
	MadeToOrder  bool      `json:"madeToOrder"`
	NewItems     bool      `json:"newItems"`
	SortBy       SortOrder `json:"sortBy"`
	Search       string    `json:"searchQuery"`
}

// Selection carries the three-tier category selection state. Exactly one
// tier is authoritative per filtering pass, in precedence order:
// SelectedIDs > MainCategoryID > CurrentID > no filter.
type Selection struct {
	// SelectedIDs is the explicit multi-select. The caller is responsible
	// for having expanded a main-category pick into subcategory IDs at
	// selection time; the engine applies the set verbatim.
	SelectedIDs []int64 `json:"selectedCategoryIds,omitempty"`

	// MainCategoryID is the fallback single top-level pick. It is expanded
	// to the category plus all of its subcategories at resolution time.
	MainCategoryID *int64 `json:"selectedMainCategoryId,omitempty"`

	// CurrentID is the legacy single-select, lowest precedence.
	CurrentID *int64 `json:"currentCategoryId,omitempty"`
}
