// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package database

import (
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed creates data only when tables are empty, so calling it twice
	// must not error or duplicate rows. We don't clear the database first
	// because other test packages may be running against the same instance.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var adminCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM admins WHERE email = 'owner@minishop.local'").Scan(&adminCount); err != nil {
		t.Fatalf("count owner admins: %v", err)
	}
	if adminCount != 1 {
		t.Errorf("expected exactly 1 owner admin, got %d", adminCount)
	}

	var settingCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM shop_settings").Scan(&settingCount); err != nil {
		t.Fatalf("count shop settings: %v", err)
	}
	if settingCount < 6 {
		t.Errorf("expected at least 6 shop settings, got %d", settingCount)
	}

	var productCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM products").Scan(&productCount); err != nil {
		t.Fatalf("count products: %v", err)
	}
	if productCount < 1 {
		t.Errorf("expected at least 1 sample product, got %d", productCount)
	}
}
