// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the allowed forward moves per status. Cancellation
// is allowed from any non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:       {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether an order may move from its current status
// to the target status.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether the value is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a checkout created from a shopper's cart. Items snapshot the
// product name and effective price at checkout time, so later catalog
// edits don't rewrite order history.
type Order struct {
	ID             uuid.UUID   `json:"id"`
	TelegramUserID int64       `json:"telegramUserId"`
	CustomerName   string      `json:"customerName"`
	Phone          string      `json:"phone"`
	DeliveryNote   string      `json:"deliveryNote,omitempty"`
	Status         OrderStatus `json:"status"`
	Total          float64     `json:"total"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`

	// Virtual field populated by store methods.
	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"orderId"`
	ProductID int64     `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
}

// Reservation is a cart line: a quantity of a product held for a Telegram
// user until ExpiresAt. Expired reservations are swept in the background
// and never reach checkout.
type Reservation struct {
	ID             uuid.UUID `json:"id"`
	TelegramUserID int64     `json:"telegramUserId"`
	ProductID      int64     `json:"productId"`
	Quantity       int       `json:"quantity"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`

	// Virtual field populated by store methods.
	Product *Product `json:"product,omitempty"`
}

// Expired reports whether the reservation has passed its hold window.
func (r *Reservation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
