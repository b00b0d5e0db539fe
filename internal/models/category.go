// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"minishop/internal/catalog"
)

// Category is a storefront category. The hierarchy is two levels deep:
// top-level categories may have subcategories, subcategories may not nest
// further (enforced at the admin boundary).
type Category struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parentId,omitempty"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Virtual fields populated by store methods.
	Subcategories []Category `json:"subcategories,omitempty"`
	ProductCount  int        `json:"productCount"`
}

// IsTopLevel reports whether the category sits at the root of the tree.
func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}

// ToCatalogHierarchy converts a category tree into the filter engine's
// hierarchy view.
func ToCatalogHierarchy(tree []Category) []catalog.Category {
	out := make([]catalog.Category, len(tree))
	for i, c := range tree {
		node := catalog.Category{ID: c.ID, Name: c.Name}
		for _, sub := range c.Subcategories {
			node.Subcategories = append(node.Subcategories, catalog.Category{ID: sub.ID, Name: sub.Name})
		}
		out[i] = node
	}
	return out
}
