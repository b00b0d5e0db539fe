// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"minishop/internal/models"
	"minishop/internal/telegram"
)

const cartShopper = 940_000_001

func cartRequest(method, path, body string, userID int64) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(ctxWithTelegramUser(req.Context(), &telegram.User{ID: userID, FirstName: "Cart"}))
}

func TestCartAddAndList(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, cartShopper)
	t.Cleanup(func() { cleanShopper(t, env.DB, cartShopper) })

	p := seedCatalogProduct(t, env, "Cart Cup", "cart-cup", 40, 10)

	rr := httptest.NewRecorder()
	env.Cart.Add(rr, cartRequest(http.MethodPost, "/api/v1/cart/items",
		`{"productId": `+jsonInt(p.ID)+`, "quantity": 2}`, cartShopper))
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: got %d, want 201, body %s", rr.Code, rr.Body.String())
	}

	var res models.Reservation
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("decode reservation: %v", err)
	}
	if res.Quantity != 2 || res.ProductID != p.ID {
		t.Errorf("reservation: got %+v", res)
	}

	rr = httptest.NewRecorder()
	env.Cart.List(rr, cartRequest(http.MethodGet, "/api/v1/cart", "", cartShopper))
	if rr.Code != http.StatusOK {
		t.Fatalf("list: got %d, want 200", rr.Code)
	}

	var listResp struct {
		Items []models.Reservation `json:"items"`
		Total float64              `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(listResp.Items))
	}
	if listResp.Total != 80 {
		t.Errorf("total: got %v, want 80", listResp.Total)
	}
}

func TestCartAddOutOfStock(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, cartShopper)
	t.Cleanup(func() { cleanShopper(t, env.DB, cartShopper) })

	p := seedCatalogProduct(t, env, "Scarce Pin", "scarce-pin", 25, 1)

	rr := httptest.NewRecorder()
	env.Cart.Add(rr, cartRequest(http.MethodPost, "/api/v1/cart/items",
		`{"productId": `+jsonInt(p.ID)+`, "quantity": 5}`, cartShopper))
	if rr.Code != http.StatusConflict {
		t.Errorf("over-reserve: got %d, want 409", rr.Code)
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, cartShopper)
	t.Cleanup(func() { cleanShopper(t, env.DB, cartShopper) })

	rr := httptest.NewRecorder()
	env.Cart.Add(rr, cartRequest(http.MethodPost, "/api/v1/cart/items",
		`{"productId": 999999999, "quantity": 1}`, cartShopper))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown product: got %d, want 404", rr.Code)
	}
}

func TestCartAddForSaleProduct(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, cartShopper)
	t.Cleanup(func() { cleanShopper(t, env.DB, cartShopper) })

	// For-sale products follow their own sales model and never enter
	// the cart, stocked or not.
	q, price := 3, 250.0
	p, err := env.Products.Create(&models.Product{
		Name:     "Commission Clock",
		Slug:     "commission-clock",
		Price:    &price,
		Quantity: &q,
		ForSale:  true,
		Active:   true,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	t.Cleanup(func() { cleanProducts(t, env.DB, "commission-clock") })

	rr := httptest.NewRecorder()
	env.Cart.Add(rr, cartRequest(http.MethodPost, "/api/v1/cart/items",
		`{"productId": `+jsonInt(p.ID)+`, "quantity": 1}`, cartShopper))
	if rr.Code != http.StatusNotFound {
		t.Errorf("for-sale product: got %d, want 404", rr.Code)
	}
}

func TestCartAddValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing product", `{"quantity": 1}`},
		{"zero quantity", `{"productId": 1, "quantity": 0}`},
		{"negative quantity", `{"productId": 1, "quantity": -2}`},
		{"garbage body", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			env.Cart.Add(rr, cartRequest(http.MethodPost, "/api/v1/cart/items", tt.body, cartShopper))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rr.Code)
			}
		})
	}
}

func TestCartRemove(t *testing.T) {
	env := newTestEnv(t)
	cleanShopper(t, env.DB, cartShopper)
	t.Cleanup(func() { cleanShopper(t, env.DB, cartShopper) })

	p := seedCatalogProduct(t, env, "Remove Me", "remove-me", 30, 4)

	res, err := env.Reservations.Reserve(cartShopper, p.ID, 1, env.Cart.ttl)
	if err != nil || res == nil {
		t.Fatalf("seed reservation: %v", err)
	}

	rr := httptest.NewRecorder()
	req := withChiURLParam(cartRequest(http.MethodDelete, "/api/v1/cart/items/"+res.ID.String(), "", cartShopper), "id", res.ID.String())
	env.Cart.Remove(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("remove: got %d, want 200", rr.Code)
	}

	items, err := env.Reservations.ListByUser(cartShopper)
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(items))
	}
}
