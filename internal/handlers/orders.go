// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"minishop/internal/cache"
	"minishop/internal/middleware"
	"minishop/internal/models"
	"minishop/internal/store"
	"minishop/internal/telegram"
)

// Orders groups the shopper-facing order handlers: checkout from the cart
// and order history.
type Orders struct {
	orders       *store.OrderStore
	products     *store.ProductStore
	reservations *store.ReservationStore
	settings     *store.SettingStore
	catalogCache *cache.CatalogCache
	cacheLog     *store.CacheLogStore
	notifier     *telegram.Notifier
}

// NewOrders creates the order handler group. notifier may be nil when no
// orders chat is configured.
func NewOrders(orders *store.OrderStore, products *store.ProductStore, reservations *store.ReservationStore, settings *store.SettingStore, catalogCache *cache.CatalogCache, cacheLog *store.CacheLogStore, notifier *telegram.Notifier) *Orders {
	return &Orders{
		orders:       orders,
		products:     products,
		reservations: reservations,
		settings:     settings,
		catalogCache: catalogCache,
		cacheLog:     cacheLog,
		notifier:     notifier,
	}
}

// checkoutRequest is the payload for POST /api/v1/orders.
type checkoutRequest struct {
	CustomerName string `json:"customerName" validate:"required,max=200"`
	Phone        string `json:"phone" validate:"required,min=5,max=32"`
	DeliveryNote string `json:"deliveryNote" validate:"max=1000"`
}

// Checkout turns the user's active cart into an order. Prices and names
// are snapshotted at this moment; the cart is cleared and tracked stock
// is decremented on success.
func (o *Orders) Checkout(w http.ResponseWriter, r *http.Request) {
	user := middleware.TelegramUserFromCtx(r.Context())

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	settings, err := o.settings.All()
	if err != nil {
		slog.Error("load settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "checkout unavailable")
		return
	}
	if !settings.ShopOpen() {
		respondError(w, http.StatusConflict, "shop is currently closed")
		return
	}

	lines, err := o.reservations.ListByUser(user.ID)
	if err != nil {
		slog.Error("list cart failed", "user", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "checkout unavailable")
		return
	}
	lines = activeItems(lines, time.Now())
	if len(lines) == 0 {
		respondError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	// Snapshot each line. Products pulled, unpriced, or switched to the
	// alternate sales model since the hold was placed drop out of the
	// order rather than failing the whole checkout. Deducting stock is
	// deferred until the order exists, and only for lines that survived.
	var items []models.OrderItem
	var total float64
	deduct := make(map[int64]int)
	for _, line := range lines {
		p := line.Product
		if p == nil || !p.Active || p.ForSale.Bool() {
			continue
		}
		price, ok := p.EffectivePrice()
		if !ok {
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: price,
			Quantity:  line.Quantity,
		})
		total += price * float64(line.Quantity)
		if !p.MadeToOrder.Bool() {
			deduct[p.ID] = line.Quantity
		}
	}
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "cart has no purchasable items")
		return
	}

	if min := settings.MinOrderAmount(); total < min {
		respondError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("order total %.2f is below the minimum of %.2f", total, min))
		return
	}

	order := &models.Order{
		TelegramUserID: user.ID,
		CustomerName:   req.CustomerName,
		Phone:          req.Phone,
		DeliveryNote:   req.DeliveryNote,
		Status:         models.OrderStatusNew,
		Total:          total,
	}

	created, err := o.orders.Create(order, items)
	if err != nil {
		slog.Error("create order failed", "user", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not place order")
		return
	}

	// Consume the held stock and release the cart.
	for productID, qty := range deduct {
		if err := o.products.DecrementStock(productID, qty); err != nil {
			slog.Error("decrement stock failed", "product", productID, "error", err)
		}
		o.cacheLog.Log("product", productID, "stock")
	}
	if err := o.reservations.DeleteByUser(user.ID); err != nil {
		slog.Error("clear cart failed", "user", user.ID, "error", err)
	}
	o.catalogCache.Invalidate(r.Context())

	if o.notifier != nil {
		go o.notifier.NotifyNewOrder(created, user)
	}

	slog.Info("order placed", "order", created.ID, "user", user.ID, "total", created.Total, "items", len(created.Items))
	respondJSON(w, http.StatusCreated, created)
}

// ListMine returns the user's own orders, newest first.
func (o *Orders) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.TelegramUserFromCtx(r.Context())

	orders, err := o.orders.ListByUser(user.ID)
	if err != nil {
		slog.Error("list orders failed", "user", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "orders unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
