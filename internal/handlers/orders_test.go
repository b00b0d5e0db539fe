// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"minishop/internal/models"
)

const checkoutShopper = 950_000_001

func TestCheckoutPlacesOrder(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, checkoutShopper)
	t.Cleanup(func() { cleanShopper(t, env.DB, checkoutShopper) })

	if err := env.Settings.Set(models.SettingShopOpen, "true"); err != nil {
		t.Fatalf("open shop: %v", err)
	}
	if err := env.Settings.Set(models.SettingMinOrderAmount, "0"); err != nil {
		t.Fatalf("reset min order: %v", err)
	}

	p := seedCatalogProduct(t, env, "Checkout Mug", "checkout-mug", 60, 8)
	if _, err := env.Reservations.Reserve(checkoutShopper, p.ID, 2, env.Cart.ttl); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	rr := httptest.NewRecorder()
	env.OrderAPI.Checkout(rr, cartRequest(http.MethodPost, "/api/v1/orders",
		`{"customerName": "Check Out", "phone": "+15550001122", "deliveryNote": "ring twice"}`, checkoutShopper))
	if rr.Code != http.StatusCreated {
		t.Fatalf("checkout: got %d, want 201, body %s", rr.Code, rr.Body.String())
	}

	var order models.Order
	if err := json.NewDecoder(rr.Body).Decode(&order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Status != models.OrderStatusNew {
		t.Errorf("status: got %s, want new", order.Status)
	}
	if order.Total != 120 {
		t.Errorf("total: got %v, want 120", order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].UnitPrice != 60 {
		t.Errorf("items snapshot: got %+v", order.Items)
	}

	// Cart must be cleared.
	lines, err := env.Reservations.ListByUser(checkoutShopper)
	if err != nil {
		t.Fatalf("list cart: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("cart should be empty after checkout, got %d lines", len(lines))
	}

	// Tracked stock must be consumed.
	after, err := env.Products.FindByID(p.ID)
	if err != nil || after == nil {
		t.Fatalf("reload product: %v", err)
	}
	if after.Quantity == nil || *after.Quantity != 6 {
		t.Errorf("stock after checkout: got %v, want 6", after.Quantity)
	}
}

func TestCheckoutDropsForSaleLines(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, checkoutShopper)
	t.Cleanup(func() { cleanShopper(t, env.DB, checkoutShopper) })

	if err := env.Settings.Set(models.SettingShopOpen, "true"); err != nil {
		t.Fatalf("open shop: %v", err)
	}
	if err := env.Settings.Set(models.SettingMinOrderAmount, "0"); err != nil {
		t.Fatalf("reset min order: %v", err)
	}

	plain := seedCatalogProduct(t, env, "Plain Plate", "plain-plate", 45, 6)
	flipped := seedCatalogProduct(t, env, "Flipped Plate", "flipped-plate", 70, 6)

	if _, err := env.Reservations.Reserve(checkoutShopper, plain.ID, 1, env.Cart.ttl); err != nil {
		t.Fatalf("reserve plain: %v", err)
	}
	if _, err := env.Reservations.Reserve(checkoutShopper, flipped.ID, 2, env.Cart.ttl); err != nil {
		t.Fatalf("reserve flipped: %v", err)
	}

	// Between add-to-cart and checkout the second product moves to the
	// separate for-sale model; its line must drop out of the order.
	flipped.ForSale = true
	if err := env.Products.Update(flipped); err != nil {
		t.Fatalf("flip product: %v", err)
	}

	rr := httptest.NewRecorder()
	env.OrderAPI.Checkout(rr, cartRequest(http.MethodPost, "/api/v1/orders",
		`{"customerName": "Drop Line", "phone": "+15550001144"}`, checkoutShopper))
	if rr.Code != http.StatusCreated {
		t.Fatalf("checkout: got %d, want 201, body %s", rr.Code, rr.Body.String())
	}

	var order models.Order
	if err := json.NewDecoder(rr.Body).Decode(&order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != plain.ID {
		t.Fatalf("items: got %+v, want only the plain product", order.Items)
	}
	if order.Total != 45 {
		t.Errorf("total: got %v, want 45", order.Total)
	}

	// Only the ordered line consumes stock; the dropped line's product
	// keeps its quantity.
	plainAfter, err := env.Products.FindByID(plain.ID)
	if err != nil || plainAfter == nil {
		t.Fatalf("reload plain: %v", err)
	}
	if plainAfter.Quantity == nil || *plainAfter.Quantity != 5 {
		t.Errorf("plain stock: got %v, want 5", plainAfter.Quantity)
	}
	flippedAfter, err := env.Products.FindByID(flipped.ID)
	if err != nil || flippedAfter == nil {
		t.Fatalf("reload flipped: %v", err)
	}
	if flippedAfter.Quantity == nil || *flippedAfter.Quantity != 6 {
		t.Errorf("flipped stock: got %v, want 6 untouched", flippedAfter.Quantity)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, checkoutShopper)

	rr := httptest.NewRecorder()
	env.OrderAPI.Checkout(rr, cartRequest(http.MethodPost, "/api/v1/orders",
		`{"customerName": "No Cart", "phone": "+15550001122"}`, checkoutShopper))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty cart: got %d, want 400", rr.Code)
	}
}

func TestCheckoutShopClosed(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, checkoutShopper)
	t.Cleanup(func() {
		env.Settings.Set(models.SettingShopOpen, "true")
		cleanShopper(t, env.DB, checkoutShopper)
	})

	if err := env.Settings.Set(models.SettingShopOpen, "false"); err != nil {
		t.Fatalf("close shop: %v", err)
	}

	rr := httptest.NewRecorder()
	env.OrderAPI.Checkout(rr, cartRequest(http.MethodPost, "/api/v1/orders",
		`{"customerName": "After Hours", "phone": "+15550001122"}`, checkoutShopper))
	if rr.Code != http.StatusConflict {
		t.Errorf("closed shop: got %d, want 409", rr.Code)
	}
}

func TestCheckoutBelowMinimum(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, checkoutShopper)
	t.Cleanup(func() {
		env.Settings.Set(models.SettingMinOrderAmount, "0")
		cleanShopper(t, env.DB, checkoutShopper)
	})

	if err := env.Settings.Set(models.SettingShopOpen, "true"); err != nil {
		t.Fatalf("open shop: %v", err)
	}
	if err := env.Settings.Set(models.SettingMinOrderAmount, "500"); err != nil {
		t.Fatalf("set min order: %v", err)
	}

	p := seedCatalogProduct(t, env, "Cheap Charm", "cheap-charm", 10, 5)
	if _, err := env.Reservations.Reserve(checkoutShopper, p.ID, 1, env.Cart.ttl); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	rr := httptest.NewRecorder()
	env.OrderAPI.Checkout(rr, cartRequest(http.MethodPost, "/api/v1/orders",
		`{"customerName": "Small Order", "phone": "+15550001122"}`, checkoutShopper))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("below minimum: got %d, want 422, body %s", rr.Code, rr.Body.String())
	}
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"phone": "+15550001122"}`},
		{"missing phone", `{"customerName": "A B"}`},
		{"short phone", `{"customerName": "A B", "phone": "12"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.OrderAPI.Checkout(rr, cartRequest(http.MethodPost, "/api/v1/orders", tt.body, checkoutShopper))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rr.Code)
			}
		})
	}
}

func TestListMineReturnsOwnOrdersOnly(t *testing.T) {
	env := newTestEnv(t)
	const otherShopper = checkoutShopper + 1
	cleanShopper(t, env.DB, checkoutShopper)
	cleanShopper(t, env.DB, otherShopper)
	t.Cleanup(func() {
		cleanShopper(t, env.DB, checkoutShopper)
		cleanShopper(t, env.DB, otherShopper)
	})

	mine, err := env.Orders.Create(&models.Order{
		TelegramUserID: checkoutShopper,
		CustomerName:   "Mine",
		Phone:          "+15550001122",
		Status:         models.OrderStatusNew,
		Total:          10,
	}, []models.OrderItem{{ProductID: 1, Name: "X", UnitPrice: 10, Quantity: 1}})
	if err != nil {
		t.Fatalf("seed my order: %v", err)
	}
	if _, err := env.Orders.Create(&models.Order{
		TelegramUserID: otherShopper,
		CustomerName:   "Other",
		Phone:          "+15550001133",
		Status:         models.OrderStatusNew,
		Total:          20,
	}, []models.OrderItem{{ProductID: 1, Name: "Y", UnitPrice: 20, Quantity: 1}}); err != nil {
		t.Fatalf("seed other order: %v", err)
	}

	rr := httptest.NewRecorder()
	env.OrderAPI.ListMine(rr, cartRequest(http.MethodGet, "/api/v1/orders", "", checkoutShopper))
	if rr.Code != http.StatusOK {
		t.Fatalf("list mine: got %d, want 200", rr.Code)
	}

	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Orders) != 1 || resp.Orders[0].ID != mine.ID {
		t.Errorf("expected only my order, got %+v", resp.Orders)
	}
}
