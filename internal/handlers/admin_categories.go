// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"minishop/internal/models"
	"minishop/internal/store"
)

// categoryRequest is the payload for category create and update.
type categoryRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	ParentID *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

// categoryReorderRequest is the payload for the bulk reorder endpoint.
type categoryReorderRequest struct {
	Items []struct {
		ID        int64  `json:"id" validate:"required,gt=0"`
		ParentID  *int64 `json:"parentId" validate:"omitempty,gt=0"`
		SortOrder int    `json:"sortOrder" validate:"gte=0"`
	} `json:"items" validate:"required,min=1,dive"`
}

// CategoriesList returns the full category tree with product counts.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	tree, err := a.categories.Tree()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		respondError(w, http.StatusInternalServerError, "categories unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": tree})
}

// CategoryCreate creates a category. The hierarchy is two levels deep:
// a parent must itself be a top-level category.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if !a.parentUsable(w, req.ParentID, 0) {
		return
	}

	sortOrder, err := a.categories.NextSortOrder(req.ParentID)
	if err != nil {
		slog.Error("next sort order failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create category")
		return
	}

	created, err := a.categories.Create(&models.Category{
		Name:      req.Name,
		ParentID:  req.ParentID,
		SortOrder: sortOrder,
	})
	if err != nil {
		slog.Error("create category failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create category")
		return
	}

	a.invalidateCatalog(r.Context(), "category", created.ID, "create")
	respondJSON(w, http.StatusCreated, created)
}

// CategoryUpdate renames a category or moves it under a new parent.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	c, ok := a.categoryFromURL(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if !a.parentUsable(w, req.ParentID, c.ID) {
		return
	}
	// A category with subcategories must stay at the top level, otherwise
	// its children would end up three levels deep.
	if req.ParentID != nil && len(c.Subcategories) > 0 {
		respondError(w, http.StatusUnprocessableEntity, "category with subcategories cannot be nested")
		return
	}

	c.Name = req.Name
	c.ParentID = req.ParentID
	if err := a.categories.Update(c); err != nil {
		slog.Error("update category failed", "id", c.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not update category")
		return
	}

	a.invalidateCatalog(r.Context(), "category", c.ID, "update")
	respondJSON(w, http.StatusOK, c)
}

// CategoryDelete removes a category. Subcategories cascade with it;
// products in the deleted categories fall back to uncategorized.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := a.categoryFromURL(w, r)
	if !ok {
		return
	}

	if err := a.categories.Delete(c.ID); err != nil {
		slog.Error("delete category failed", "id", c.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not delete category")
		return
	}

	a.invalidateCatalog(r.Context(), "category", c.ID, "delete")
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CategoriesReorder applies a bulk sort-order/parent update in one
// transaction.
func (a *Admin) CategoriesReorder(w http.ResponseWriter, r *http.Request) {
	var req categoryReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	items := make([]store.ReorderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = store.ReorderItem{ID: it.ID, ParentID: it.ParentID, Order: it.SortOrder}
	}

	if err := a.categories.Reorder(items); err != nil {
		slog.Error("reorder categories failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not reorder categories")
		return
	}

	a.invalidateCatalog(r.Context(), "category", 0, "reorder")
	respondJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// categoryFromURL resolves the {id} URL parameter, loading the category
// through Tree so subcategory information is present for validation.
func (a *Admin) categoryFromURL(w http.ResponseWriter, r *http.Request) (*models.Category, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return nil, false
	}

	tree, err := a.categories.Tree()
	if err != nil {
		slog.Error("category lookup failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "category lookup failed")
		return nil, false
	}
	for i := range tree {
		if tree[i].ID == id {
			return &tree[i], true
		}
		for j := range tree[i].Subcategories {
			if tree[i].Subcategories[j].ID == id {
				return &tree[i].Subcategories[j], true
			}
		}
	}

	respondError(w, http.StatusNotFound, "category not found")
	return nil, false
}

// parentUsable checks that an optional parent reference is a top-level
// category and not the category itself.
func (a *Admin) parentUsable(w http.ResponseWriter, parentID *int64, selfID int64) bool {
	if parentID == nil {
		return true
	}
	if selfID != 0 && *parentID == selfID {
		respondError(w, http.StatusUnprocessableEntity, "category cannot be its own parent")
		return false
	}

	parent, err := a.categories.FindByID(*parentID)
	if err != nil {
		slog.Error("parent lookup failed", "id", *parentID, "error", err)
		respondError(w, http.StatusInternalServerError, "category lookup failed")
		return false
	}
	if parent == nil {
		respondError(w, http.StatusUnprocessableEntity, "parent category does not exist")
		return false
	}
	if !parent.IsTopLevel() {
		respondError(w, http.StatusUnprocessableEntity, "subcategories cannot have their own subcategories")
		return false
	}
	return true
}
