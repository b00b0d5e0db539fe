// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"time"
)

// Well-known shop setting keys.
const (
	SettingShopOpen        = "shop_open"
	SettingCurrency        = "currency"
	SettingDeliveryEnabled = "delivery_enabled"
	SettingDeliveryPrice   = "delivery_price"
	SettingMinOrderAmount  = "min_order_amount"
	SettingOrdersChatID    = "orders_chat_id"
)

// ShopSetting represents a single configuration key-value pair.
type ShopSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShopSettings is a convenience map for accessing settings by key.
type ShopSettings map[string]string

// Get returns the value for a key, or the fallback if the key doesn't exist.
func (s ShopSettings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Bool reads a setting through the tolerant Flag normalization, so "1",
// "true" and "on" all count as enabled.
func (s ShopSettings) Bool(key string, fallback bool) bool {
	v, ok := s[key]
	if !ok || v == "" {
		return fallback
	}
	return parseFlagString(v).Bool()
}

// Float reads a numeric setting, falling back on parse failure.
func (s ShopSettings) Float(key string, fallback float64) float64 {
	v, ok := s[key]
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

// ShopOpen reports whether the storefront currently accepts orders.
func (s ShopSettings) ShopOpen() bool {
	return s.Bool(SettingShopOpen, true)
}

// MinOrderAmount returns the checkout minimum, zero meaning no minimum.
func (s ShopSettings) MinOrderAmount() float64 {
	return s.Float(SettingMinOrderAmount, 0)
}
