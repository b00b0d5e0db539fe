// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"minishop/internal/catalog"
)

// Product is a storefront catalog item as stored in Postgres. Nullable
// columns map to pointers; boolean-like columns go through Flag so legacy
// 0/1 and "true"/"false" encodings normalize on scan.
type Product struct {
	ID          int64      `json:"id"`
	CategoryID  *int64     `json:"categoryId,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Slug        string     `json:"slug"`
	Price       *float64   `json:"price,omitempty"`
	Discount    int        `json:"discount"`
	Quantity    *int       `json:"quantity,omitempty"`
	MadeToOrder Flag       `json:"isMadeToOrder"`
	HotOffer    Flag       `json:"isHotOffer"`
	ForSale     Flag       `json:"isForSale"`
	PhotoKey    *string    `json:"-"`
	PhotoURL    string     `json:"photoUrl,omitempty"`
	ThumbURL    string     `json:"thumbUrl,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// EffectivePrice returns the discount-applied price and whether the
// product is priced at all.
func (p *Product) EffectivePrice() (float64, bool) {
	return catalog.EffectivePrice(p.ToCatalog())
}

// ToCatalog converts the stored product into the filter engine's view.
// CreatedAt is always present for rows we own, so the engine's id-rank
// fallback only kicks in for imported data without timestamps.
func (p *Product) ToCatalog() catalog.Product {
	cp := catalog.Product{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
		Discount:    p.Discount,
		Quantity:    p.Quantity,
		MadeToOrder: p.MadeToOrder.Bool(),
		HotOffer:    p.HotOffer.Bool(),
		ForSale:     p.ForSale.Bool(),
		Name:        p.Name,
		Description: p.Description,
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		cp.CreatedAt = &created
	}
	return cp
}

// ToCatalogProducts converts a stored product slice for a filter pass.
func ToCatalogProducts(products []Product) []catalog.Product {
	out := make([]catalog.Product, len(products))
	for i := range products {
		out[i] = products[i].ToCatalog()
	}
	return out
}
