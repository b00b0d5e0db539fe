// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"minishop/internal/models"
)

// ErrOutOfStock is returned when a reservation asks for more units than
// are available after accounting for other shoppers' active holds.
var ErrOutOfStock = errors.New("not enough stock available")

// ReservationStore manages cart reservations. A reservation holds a
// quantity of a product for one Telegram user until it expires; stock
// checks count other users' unexpired holds against the product quantity.
type ReservationStore struct {
	db *sql.DB
}

// NewReservationStore returns a new ReservationStore.
func NewReservationStore(db *sql.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

const reservationColumns = `id, telegram_user_id, product_id, quantity, created_at, expires_at`

func scanReservation(scanner interface{ Scan(...any) error }) (*models.Reservation, error) {
	var r models.Reservation
	err := scanner.Scan(&r.ID, &r.TelegramUserID, &r.ProductID, &r.Quantity, &r.CreatedAt, &r.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Reserve sets the user's cart line for a product to the given quantity,
// refreshing the hold window. Returns nil, nil if the product does not
// exist or is not purchasable through the cart: inactive products and
// for-sale products (which follow their own price/quantity model) are
// both refused here. ErrOutOfStock if the quantity cannot be covered.
// Made-to-order products skip the stock check.
func (s *ReservationStore) Reserve(telegramUserID, productID int64, quantity int, ttl time.Duration) (*models.Reservation, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var stock sql.NullInt64
	var madeToOrder, forSale, active bool
	err = tx.QueryRow(`
		SELECT quantity, made_to_order, for_sale, active FROM products WHERE id = $1 FOR UPDATE
	`, productID).Scan(&stock, &madeToOrder, &forSale, &active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reserve lock product: %w", err)
	}
	if !active || forSale {
		return nil, nil
	}

	if !madeToOrder {
		if !stock.Valid {
			return nil, ErrOutOfStock
		}
		var held int64
		err = tx.QueryRow(`
			SELECT COALESCE(SUM(quantity), 0) FROM reservations
			WHERE product_id = $1 AND telegram_user_id <> $2 AND expires_at > NOW()
		`, productID, telegramUserID).Scan(&held)
		if err != nil {
			return nil, fmt.Errorf("reserve count holds: %w", err)
		}
		if int64(quantity) > stock.Int64-held {
			return nil, ErrOutOfStock
		}
	}

	row := tx.QueryRow(`
		INSERT INTO reservations (telegram_user_id, product_id, quantity, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, expires_at = EXCLUDED.expires_at
		RETURNING `+reservationColumns,
		telegramUserID, productID, quantity, time.Now().Add(ttl),
	)
	r, err := scanReservation(row)
	if err != nil {
		return nil, fmt.Errorf("reserve upsert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reserve commit: %w", err)
	}
	return r, nil
}

// ListByUser returns the user's unexpired reservations with product
// details attached, oldest first.
func (s *ReservationStore) ListByUser(telegramUserID int64) ([]models.Reservation, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.telegram_user_id, r.product_id, r.quantity, r.created_at, r.expires_at,
		       p.id, p.category_id, p.name, p.description, p.slug, p.price, p.discount, p.quantity,
		       p.made_to_order, p.hot_offer, p.for_sale, p.photo_key, p.active, p.created_at, p.updated_at
		FROM reservations r
		JOIN products p ON p.id = r.product_id
		WHERE r.telegram_user_id = $1 AND r.expires_at > NOW()
		ORDER BY r.created_at
	`, telegramUserID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var items []models.Reservation
	for rows.Next() {
		var r models.Reservation
		var p models.Product
		err := rows.Scan(
			&r.ID, &r.TelegramUserID, &r.ProductID, &r.Quantity, &r.CreatedAt, &r.ExpiresAt,
			&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Slug, &p.Price, &p.Discount, &p.Quantity,
			&p.MadeToOrder, &p.HotOffer, &p.ForSale, &p.PhotoKey, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		r.Product = &p
		items = append(items, r)
	}
	return items, rows.Err()
}

// Delete removes one reservation, checking ownership so a user cannot
// drop another shopper's hold.
func (s *ReservationStore) Delete(id uuid.UUID, telegramUserID int64) error {
	_, err := s.db.Exec(`
		DELETE FROM reservations WHERE id = $1 AND telegram_user_id = $2
	`, id, telegramUserID)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

// DeleteByUser clears the user's whole cart. Called after checkout.
func (s *ReservationStore) DeleteByUser(telegramUserID int64) error {
	_, err := s.db.Exec(`DELETE FROM reservations WHERE telegram_user_id = $1`, telegramUserID)
	if err != nil {
		return fmt.Errorf("clear reservations: %w", err)
	}
	return nil
}

// PurgeExpired removes reservations past their hold window and returns
// how many were deleted. Run periodically by the background sweeper.
func (s *ReservationStore) PurgeExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM reservations WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge reservations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}
	return n, nil
}
