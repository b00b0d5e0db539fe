// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// owner account, the baseline shop settings, and a small sample catalog.
// Each section is guarded by an emptiness check so Seed is safe to call
// on every startup.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedSettings(db); err != nil {
		return err
	}
	if err := seedCatalog(db); err != nil {
		return err
	}
	return nil
}

// seedAdmin creates the default owner account if no admins exist. The
// owner will be prompted to set up 2FA on first login (totp_enabled = false).
func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return fmt.Errorf("seed check admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO admins (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "owner@minishop.local", string(hash), "Owner", "owner", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default owner account",
		"email", "owner@minishop.local",
		"password", "admin",
	)
	return nil
}

// seedSettings inserts the baseline shop settings, skipping keys that
// already exist so operator edits survive restarts.
func seedSettings(db *sql.DB) error {
	defaults := map[string]string{
		"shop_open":        "true",
		"currency":         "USD",
		"delivery_enabled": "true",
		"delivery_price":   "0",
		"min_order_amount": "0",
		"orders_chat_id":   "",
	}

	for key, value := range defaults {
		_, err := db.Exec(`
			INSERT INTO shop_settings (key, value)
			VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING
		`, key, value)
		if err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	return nil
}

// seedCatalog creates a small sample catalog so a fresh development
// instance has something to browse.
func seedCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	var jewelryID, decorID int64
	if err := db.QueryRow(`
		INSERT INTO categories (name, sort_order) VALUES ('Jewelry', 1) RETURNING id
	`).Scan(&jewelryID); err != nil {
		return fmt.Errorf("seed category jewelry: %w", err)
	}
	if err := db.QueryRow(`
		INSERT INTO categories (name, sort_order) VALUES ('Home Decor', 2) RETURNING id
	`).Scan(&decorID); err != nil {
		return fmt.Errorf("seed category decor: %w", err)
	}

	var ringsID int64
	if err := db.QueryRow(`
		INSERT INTO categories (name, parent_id, sort_order) VALUES ('Rings', $1, 1) RETURNING id
	`, jewelryID).Scan(&ringsID); err != nil {
		return fmt.Errorf("seed category rings: %w", err)
	}
	if _, err := db.Exec(`
		INSERT INTO categories (name, parent_id, sort_order) VALUES ('Earrings', $1, 2)
	`, jewelryID); err != nil {
		return fmt.Errorf("seed category earrings: %w", err)
	}

	products := []struct {
		categoryID  int64
		name        string
		slug        string
		price       float64
		discount    int
		quantity    int
		madeToOrder bool
		hotOffer    bool
	}{
		{ringsID, "Silver Band Ring", "silver-band-ring", 450, 0, 5, false, false},
		{ringsID, "Gold Signet Ring", "gold-signet-ring", 6200, 10, 2, false, true},
		{jewelryID, "Pearl Pendant", "pearl-pendant", 1800, 0, 0, true, false},
		{decorID, "Ceramic Vase", "ceramic-vase", 950, 15, 8, false, false},
		{decorID, "Woven Wall Hanging", "woven-wall-hanging", 2400, 0, 3, false, false},
	}

	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (category_id, name, slug, price, discount, quantity, made_to_order, hot_offer)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.categoryID, p.name, p.slug, p.price, p.discount, p.quantity, p.madeToOrder, p.hotOffer)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.slug, err)
		}
	}

	slog.Info("database seeded with sample catalog",
		"categories", 4,
		"products", len(products),
	)
	return nil
}
