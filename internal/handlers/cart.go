// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"minishop/internal/middleware"
	"minishop/internal/models"
	"minishop/internal/store"
)

// Cart groups the reservation (cart) handlers. A cart line is a TTL-bound
// stock hold; expired lines disappear without shopper action.
type Cart struct {
	reservations *store.ReservationStore
	shop         *Shop
	ttl          time.Duration
}

// NewCart creates the cart handler group. ttl is the hold window applied
// to every reservation write.
func NewCart(reservations *store.ReservationStore, shop *Shop, ttl time.Duration) *Cart {
	return &Cart{reservations: reservations, shop: shop, ttl: ttl}
}

// cartAddRequest is the payload for POST /api/v1/cart/items. Quantity is
// absolute: posting the same product again replaces the held quantity.
type cartAddRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1,lte=99"`
}

// List returns the user's active cart lines with their products attached.
func (c *Cart) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.TelegramUserFromCtx(r.Context())

	items, err := c.reservations.ListByUser(user.ID)
	if err != nil {
		slog.Error("list cart failed", "user", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "cart unavailable")
		return
	}

	total := 0.0
	for i := range items {
		if items[i].Product != nil {
			c.shop.resolvePhotoURL(items[i].Product)
			if price, ok := items[i].Product.EffectivePrice(); ok {
				total += price * float64(items[i].Quantity)
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

// Add creates or replaces the user's cart line for a product.
func (c *Cart) Add(w http.ResponseWriter, r *http.Request) {
	user := middleware.TelegramUserFromCtx(r.Context())

	var req cartAddRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, err := c.reservations.Reserve(user.ID, req.ProductID, req.Quantity, c.ttl)
	switch {
	case errors.Is(err, store.ErrOutOfStock):
		respondError(w, http.StatusConflict, "not enough stock available")
		return
	case err != nil:
		slog.Error("reserve failed", "user", user.ID, "product", req.ProductID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not reserve product")
		return
	case res == nil:
		respondError(w, http.StatusNotFound, "product not available")
		return
	}

	respondJSON(w, http.StatusCreated, res)
}

// Remove deletes one of the user's cart lines. Removing a line that
// doesn't exist (or belongs to someone else) is a no-op.
func (c *Cart) Remove(w http.ResponseWriter, r *http.Request) {
	user := middleware.TelegramUserFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if err := c.reservations.Delete(id, user.ID); err != nil {
		slog.Error("delete reservation failed", "user", user.ID, "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not remove item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// activeItems filters out lines that expired between the SQL read and now.
func activeItems(items []models.Reservation, now time.Time) []models.Reservation {
	out := items[:0]
	for _, it := range items {
		if !it.Expired(now) {
			out = append(out, it)
		}
	}
	return out
}
