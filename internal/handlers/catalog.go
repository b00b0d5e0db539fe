// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"minishop/internal/cache"
	"minishop/internal/catalog"
	"minishop/internal/models"
	"minishop/internal/storage"
	"minishop/internal/store"
)

// Shop groups the public storefront handlers. Every route in this group
// sits behind the Telegram auth middleware.
type Shop struct {
	products      *store.ProductStore
	categories    *store.CategoryStore
	settings      *store.SettingStore
	catalogCache  *cache.CatalogCache
	storageClient *storage.Client
}

// NewShop creates the storefront handler group. storageClient may be nil
// if S3 is not configured; products then ship without photo URLs.
func NewShop(products *store.ProductStore, categories *store.CategoryStore, settings *store.SettingStore, catalogCache *cache.CatalogCache, storageClient *storage.Client) *Shop {
	return &Shop{
		products:      products,
		categories:    categories,
		settings:      settings,
		catalogCache:  catalogCache,
		storageClient: storageClient,
	}
}

// catalogResponse is the payload for GET /api/v1/catalog. State carries
// the normalized filter state actually applied, which may differ from the
// requested one when a dimension has no matching products.
type catalogResponse struct {
	Items        []models.Product     `json:"items"`
	Categories   []models.Category    `json:"categories"`
	Ranges       catalog.Ranges       `json:"ranges"`
	Availability catalog.Availability `json:"availability"`
	State        catalog.FilterState  `json:"state"`
}

// Catalog composes the filtered product list: snapshot (cache → Postgres),
// adaptive price ranges, per-dimension availability, state normalization,
// category resolution, then the filter pass itself.
func (s *Shop) Catalog(w http.ResponseWriter, r *http.Request) {
	products, tree, ok := s.loadSnapshot(r)
	if !ok {
		respondError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}

	state := filterStateFromQuery(r)
	sel := selectionFromQuery(r)

	view := models.ToCatalogProducts(products)
	hierarchy := models.ToCatalogHierarchy(tree)

	ranges := catalog.ComputeRanges(view)
	avail := catalog.ComputeAvailability(view, ranges)
	state = state.Normalize(avail)

	filtered := catalog.Apply(view, state, sel, hierarchy)

	// Map engine output back onto the stored products, in engine order.
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(filtered))
	for _, cp := range filtered {
		if p, found := byID[cp.ID]; found {
			items = append(items, p)
		}
	}

	respondJSON(w, http.StatusOK, catalogResponse{
		Items:        items,
		Categories:   tree,
		Ranges:       ranges,
		Availability: avail,
		State:        state,
	})
}

// Product returns a single active product by numeric ID or slug, for
// deep links shared outside the Mini App.
func (s *Shop) Product(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	var (
		p   *models.Product
		err error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		p, err = s.products.FindByID(id)
	} else {
		p, err = s.products.FindBySlug(ref)
	}
	if err != nil {
		slog.Error("product lookup failed", "ref", ref, "error", err)
		respondError(w, http.StatusInternalServerError, "product lookup failed")
		return
	}
	if p == nil || !p.Active {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	s.resolvePhotoURL(p)
	respondJSON(w, http.StatusOK, p)
}

// Categories returns the two-level category tree with product counts.
func (s *Shop) Categories(w http.ResponseWriter, r *http.Request) {
	_, tree, ok := s.loadSnapshot(r)
	if !ok {
		respondError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": tree})
}

// Settings returns the public shop configuration the Mini App needs to
// render checkout: open flag, currency, delivery, minimum order.
func (s *Shop) Settings(w http.ResponseWriter, r *http.Request) {
	all, err := s.settings.All()
	if err != nil {
		slog.Error("load settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "settings unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"shopOpen":        all.ShopOpen(),
		"currency":        all.Get(models.SettingCurrency, "USD"),
		"deliveryEnabled": all.Bool(models.SettingDeliveryEnabled, false),
		"deliveryPrice":   all.Float(models.SettingDeliveryPrice, 0),
		"minOrderAmount":  all.MinOrderAmount(),
	})
}

// loadSnapshot returns the active product list and category tree, served
// from the Valkey cache when warm and refilled from Postgres otherwise.
func (s *Shop) loadSnapshot(r *http.Request) ([]models.Product, []models.Category, bool) {
	ctx := r.Context()

	products, hit := s.catalogCache.GetProducts(ctx)
	if !hit {
		var err error
		products, err = s.products.ListActive()
		if err != nil {
			slog.Error("load products failed", "error", err)
			return nil, nil, false
		}
		s.resolvePhotoURLs(products)
		s.catalogCache.SetProducts(ctx, products)
	}

	tree, hit := s.catalogCache.GetCategories(ctx)
	if !hit {
		var err error
		tree, err = s.categories.Tree()
		if err != nil {
			slog.Error("load categories failed", "error", err)
			return nil, nil, false
		}
		s.catalogCache.SetCategories(ctx, tree)
	}

	return products, tree, true
}

// resolvePhotoURLs fills the photo URLs from stored keys.
func (s *Shop) resolvePhotoURLs(products []models.Product) {
	for i := range products {
		s.resolvePhotoURL(&products[i])
	}
}

func (s *Shop) resolvePhotoURL(p *models.Product) {
	if s.storageClient == nil || p.PhotoKey == nil {
		return
	}
	p.PhotoURL = s.storageClient.FileURL(storage.VariantKey(*p.PhotoKey, "full"))
	p.ThumbURL = s.storageClient.FileURL(storage.VariantKey(*p.PhotoKey, "thumb"))
}

// filterStateFromQuery maps query parameters onto a filter state.
// Unrecognized values fall back to the zero dimension rather than erroring,
// so a stale client never breaks the storefront.
func filterStateFromQuery(r *http.Request) catalog.FilterState {
	q := r.URL.Query()
	return catalog.FilterState{
		Price:        catalog.ParseBand(q.Get("price")),
		InStock:      queryBool(q.Get("inStock")),
		HotOffer:     queryBool(q.Get("hotOffer")),
		WithDiscount: queryBool(q.Get("withDiscount")),
		MadeToOrder:  queryBool(q.Get("madeToOrder")),
		NewItems:     queryBool(q.Get("newItems")),
		SortBy:       catalog.ParseSortOrder(q.Get("sortBy")),
		Search:       q.Get("q"),
	}
}

// selectionFromQuery maps query parameters onto a category selection.
// categoryIds is a comma-separated multi-select; mainCategoryId and
// categoryId are the single-select tiers.
func selectionFromQuery(r *http.Request) catalog.Selection {
	q := r.URL.Query()
	var sel catalog.Selection

	if raw := q.Get("categoryIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				sel.SelectedIDs = append(sel.SelectedIDs, id)
			}
		}
	}
	if id, err := strconv.ParseInt(q.Get("mainCategoryId"), 10, 64); err == nil {
		sel.MainCategoryID = &id
	}
	if id, err := strconv.ParseInt(q.Get("categoryId"), 10, 64); err == nil {
		sel.CurrentID = &id
	}
	return sel
}

// queryBool treats "1" and "true" as set; anything else is unset.
func queryBool(v string) bool {
	return v == "1" || v == "true"
}
