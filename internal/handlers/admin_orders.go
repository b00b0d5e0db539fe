// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"minishop/internal/models"
	"minishop/internal/store"
)

// orderStatusRequest is the payload for the status transition endpoint.
type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new confirmed shipped completed cancelled"`
}

// OrdersList returns orders for the back office, optionally filtered by
// status via ?status=.
func (a *Admin) OrdersList(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	orders, err := a.orders.List(status)
	if err != nil {
		slog.Error("list orders failed", "error", err)
		respondError(w, http.StatusInternalServerError, "orders unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// OrderGet returns one order with its items.
func (a *Admin) OrderGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := a.orders.FindByID(id)
	if err != nil {
		slog.Error("order lookup failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "order lookup failed")
		return
	}
	if order == nil {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// OrderUpdateStatus moves an order along the status machine. Illegal
// transitions come back as 409 with the attempted edge in the message.
func (a *Admin) OrderUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req orderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	updated, err := a.orders.UpdateStatus(id, models.OrderStatus(req.Status))
	switch {
	case errors.Is(err, store.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		slog.Error("update order status failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not update order")
		return
	case updated == nil:
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	slog.Info("order status updated", "order", id, "status", updated.Status)
	respondJSON(w, http.StatusOK, updated)
}
