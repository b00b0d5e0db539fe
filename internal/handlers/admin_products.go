// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"minishop/internal/imaging"
	"minishop/internal/models"
	"minishop/internal/slug"
	"minishop/internal/storage"
)

// maxPhotoSize caps product photo uploads (20 MB).
const maxPhotoSize = 20 << 20

// allowedPhotoTypes defines MIME types accepted for product photos.
// Everything gets re-encoded to WebP, so only raster formats that libvips
// decodes are allowed.
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// productRequest is the payload for product create and update.
type productRequest struct {
	Name        string   `json:"name" validate:"required,max=300"`
	Description string   `json:"description" validate:"max=5000"`
	Slug        string   `json:"slug" validate:"max=300"`
	CategoryID  *int64   `json:"categoryId" validate:"omitempty,gt=0"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Discount    int      `json:"discount" validate:"gte=0,lte=100"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	MadeToOrder bool     `json:"isMadeToOrder"`
	HotOffer    bool     `json:"isHotOffer"`
	ForSale     bool     `json:"isForSale"`
	Active      bool     `json:"active"`
}

func (req *productRequest) apply(p *models.Product) {
	p.Name = req.Name
	p.Description = req.Description
	p.Slug = req.Slug
	if p.Slug == "" {
		p.Slug = slug.Generate(req.Name)
	}
	p.CategoryID = req.CategoryID
	p.Price = req.Price
	p.Discount = req.Discount
	p.Quantity = req.Quantity
	p.MadeToOrder = models.Flag(req.MadeToOrder)
	p.HotOffer = models.Flag(req.HotOffer)
	p.ForSale = models.Flag(req.ForSale)
	p.Active = req.Active
}

// ProductsList returns all products, including inactive ones.
func (a *Admin) ProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := a.products.List()
	if err != nil {
		slog.Error("list products failed", "error", err)
		respondError(w, http.StatusInternalServerError, "products unavailable")
		return
	}
	a.resolvePhotoURLs(products)
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

// ProductGet returns one product by ID.
func (a *Admin) ProductGet(w http.ResponseWriter, r *http.Request) {
	p, ok := a.productFromURL(w, r)
	if !ok {
		return
	}
	a.resolvePhotoURL(p)
	respondJSON(w, http.StatusOK, p)
}

// ProductCreate creates a product and invalidates the catalog snapshot.
func (a *Admin) ProductCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if !a.categoryUsable(w, req.CategoryID) {
		return
	}

	var p models.Product
	req.apply(&p)

	created, err := a.products.Create(&p)
	if err != nil {
		slog.Error("create product failed", "error", err)
		respondError(w, http.StatusConflict, "could not create product; the slug may already exist")
		return
	}

	a.invalidateCatalog(r.Context(), "product", created.ID, "create")
	respondJSON(w, http.StatusCreated, created)
}

// ProductUpdate updates a product and invalidates the catalog snapshot.
func (a *Admin) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := a.productFromURL(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if !a.categoryUsable(w, req.CategoryID) {
		return
	}

	req.apply(p)
	if err := a.products.Update(p); err != nil {
		slog.Error("update product failed", "id", p.ID, "error", err)
		respondError(w, http.StatusConflict, "could not update product; the slug may already exist")
		return
	}

	a.invalidateCatalog(r.Context(), "product", p.ID, "update")
	a.resolvePhotoURL(p)
	respondJSON(w, http.StatusOK, p)
}

// ProductDelete removes a product along with its stored photos. Existing
// order items keep their snapshot of the product.
func (a *Admin) ProductDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := a.productFromURL(w, r)
	if !ok {
		return
	}

	if err := a.products.Delete(p.ID); err != nil {
		slog.Error("delete product failed", "id", p.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not delete product")
		return
	}
	a.deletePhotoObjects(r, p.PhotoKey)

	a.invalidateCatalog(r.Context(), "product", p.ID, "delete")
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ProductPhotoUpload accepts a multipart photo, re-encodes it into WebP
// variants, uploads them, and replaces the product's previous photo.
func (a *Admin) ProductPhotoUpload(w http.ResponseWriter, r *http.Request) {
	if a.storageClient == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	p, ok := a.productFromURL(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1024)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "photo too large; maximum size is 20 MB")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !allowedPhotoTypes[ct] {
		respondError(w, http.StatusUnsupportedMediaType, "unsupported photo type; use JPEG, PNG, or WebP")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not read photo")
		return
	}

	variants, err := imaging.GenerateVariants(data, nil)
	if err != nil {
		slog.Warn("photo processing failed", "product", p.ID, "error", err)
		respondError(w, http.StatusUnprocessableEntity, "could not process photo")
		return
	}

	baseKey := storage.PhotoKey(p.ID)
	for _, v := range variants {
		key := storage.VariantKey(baseKey, v.Name)
		if err := a.storageClient.Upload(r.Context(), key, v.ContentType, bytes.NewReader(v.Data), int64(len(v.Data))); err != nil {
			slog.Error("photo upload failed", "product", p.ID, "key", key, "error", err)
			respondError(w, http.StatusInternalServerError, "could not store photo")
			return
		}
	}

	oldKey := p.PhotoKey
	if err := a.products.SetPhotoKey(p.ID, &baseKey); err != nil {
		slog.Error("set photo key failed", "product", p.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not store photo")
		return
	}
	a.deletePhotoObjects(r, oldKey)

	a.invalidateCatalog(r.Context(), "product", p.ID, "photo")
	p.PhotoKey = &baseKey
	a.resolvePhotoURL(p)
	respondJSON(w, http.StatusOK, map[string]string{
		"photoUrl": p.PhotoURL,
		"thumbUrl": p.ThumbURL,
	})
}

// ProductPhotoDelete removes the product photo.
func (a *Admin) ProductPhotoDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := a.productFromURL(w, r)
	if !ok {
		return
	}
	if p.PhotoKey == nil {
		respondError(w, http.StatusNotFound, "product has no photo")
		return
	}

	if err := a.products.SetPhotoKey(p.ID, nil); err != nil {
		slog.Error("clear photo key failed", "product", p.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not remove photo")
		return
	}
	a.deletePhotoObjects(r, p.PhotoKey)

	a.invalidateCatalog(r.Context(), "product", p.ID, "photo")
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// productFromURL resolves the {id} URL parameter and writes the error
// response itself when the product cannot be served.
func (a *Admin) productFromURL(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return nil, false
	}
	p, err := a.products.FindByID(id)
	if err != nil {
		slog.Error("product lookup failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "product lookup failed")
		return nil, false
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return nil, false
	}
	return p, true
}

// categoryUsable verifies an optional category reference points at an
// existing category, writing the error response when it doesn't.
func (a *Admin) categoryUsable(w http.ResponseWriter, id *int64) bool {
	if id == nil {
		return true
	}
	c, err := a.categories.FindByID(*id)
	if err != nil {
		slog.Error("category lookup failed", "id", *id, "error", err)
		respondError(w, http.StatusInternalServerError, "category lookup failed")
		return false
	}
	if c == nil {
		respondError(w, http.StatusUnprocessableEntity, "category does not exist")
		return false
	}
	return true
}

// deletePhotoObjects removes both stored variants of a photo, best-effort.
func (a *Admin) deletePhotoObjects(r *http.Request, baseKey *string) {
	if a.storageClient == nil || baseKey == nil {
		return
	}
	for _, name := range []string{"thumb", "full"} {
		key := storage.VariantKey(*baseKey, name)
		if err := a.storageClient.Delete(r.Context(), key); err != nil {
			slog.Warn("photo object delete failed", "key", key, "error", err)
		}
	}
}

// resolvePhotoURLs fills photo URLs on a product list for admin views.
func (a *Admin) resolvePhotoURLs(products []models.Product) {
	for i := range products {
		a.resolvePhotoURL(&products[i])
	}
}

func (a *Admin) resolvePhotoURL(p *models.Product) {
	if a.storageClient == nil || p.PhotoKey == nil {
		return
	}
	p.PhotoURL = a.storageClient.FileURL(storage.VariantKey(*p.PhotoKey, "full"))
	p.ThumbURL = a.storageClient.FileURL(storage.VariantKey(*p.PhotoKey, "thumb"))
}
