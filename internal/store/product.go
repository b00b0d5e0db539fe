// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all MiniShop
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"minishop/internal/models"
)

// ProductStore handles all product-related database operations.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a new ProductStore with the given database connection.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, category_id, name, description, slug, price, discount, quantity,
	made_to_order, hot_offer, for_sale, photo_key, active, created_at, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Slug,
		&p.Price, &p.Discount, &p.Quantity,
		&p.MadeToOrder, &p.HotOffer, &p.ForSale,
		&p.PhotoKey, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActive returns all active products, newest first. This is the
// snapshot the catalog engine filters.
func (s *ProductStore) ListActive() ([]models.Product, error) {
	return s.list(`SELECT ` + productColumns + ` FROM products WHERE active ORDER BY created_at DESC, id DESC`)
}

// List returns all products regardless of active flag, for the admin UI.
func (s *ProductStore) List() ([]models.Product, error) {
	return s.list(`SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`)
}

func (s *ProductStore) list(query string, args ...any) ([]models.Product, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a product by ID. Returns nil if not found.
func (s *ProductStore) FindByID(id int64) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a product by its deep-link slug. Returns nil if not found.
func (s *ProductStore) FindBySlug(slug string) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by slug: %w", err)
	}
	return p, nil
}

// Create inserts a new product and returns it.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	row := s.db.QueryRow(`
		INSERT INTO products (category_id, name, description, slug, price, discount, quantity,
			made_to_order, hot_offer, for_sale, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+productColumns,
		p.CategoryID, p.Name, p.Description, p.Slug, p.Price, p.Discount, p.Quantity,
		p.MadeToOrder, p.HotOffer, p.ForSale, p.Active,
	)
	result, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return result, nil
}

// Update modifies an existing product. The photo key is managed
// separately by SetPhotoKey.
func (s *ProductStore) Update(p *models.Product) error {
	_, err := s.db.Exec(`
		UPDATE products SET
			category_id = $1, name = $2, description = $3, slug = $4,
			price = $5, discount = $6, quantity = $7,
			made_to_order = $8, hot_offer = $9, for_sale = $10,
			active = $11, updated_at = NOW()
		WHERE id = $12
	`, p.CategoryID, p.Name, p.Description, p.Slug,
		p.Price, p.Discount, p.Quantity,
		p.MadeToOrder, p.HotOffer, p.ForSale,
		p.Active, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// SetPhotoKey stores the object storage key of the product photo.
// Pass nil to clear it.
func (s *ProductStore) SetPhotoKey(id int64, key *string) error {
	_, err := s.db.Exec(`UPDATE products SET photo_key = $1, updated_at = NOW() WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("set product photo key: %w", err)
	}
	return nil
}

// DecrementStock reduces the tracked quantity after a checkout. Products
// with untracked stock (NULL quantity) are left alone, and the floor is
// zero so concurrent checkouts never drive the count negative.
func (s *ProductStore) DecrementStock(id int64, by int) error {
	_, err := s.db.Exec(`
		UPDATE products
		SET quantity = GREATEST(quantity - $2, 0), updated_at = NOW()
		WHERE id = $1 AND quantity IS NOT NULL
	`, id, by)
	if err != nil {
		return fmt.Errorf("decrement product stock: %w", err)
	}
	return nil
}

// Delete removes a product by ID.
func (s *ProductStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
