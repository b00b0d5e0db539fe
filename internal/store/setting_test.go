// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"
)

func TestSettingStoreGetSet(t *testing.T) {
	db := testDB(t)
	s := NewSettingStore(db)

	key := "test_setting_getset"
	t.Cleanup(func() { cleanSettings(t, db, key) })

	// Missing key falls back.
	val, err := s.Get(key, "fallback")
	if err != nil {
		t.Fatalf("Get (missing): %v", err)
	}
	if val != "fallback" {
		t.Errorf("got %q, want fallback", val)
	}

	if err := s.Set(key, "hello"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, err = s.Get(key, "fallback")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "hello" {
		t.Errorf("got %q, want hello", val)
	}

	// Upsert replaces.
	if err := s.Set(key, "world"); err != nil {
		t.Fatalf("Set (update): %v", err)
	}
	val, _ = s.Get(key, "fallback")
	if val != "world" {
		t.Errorf("got %q, want world", val)
	}

	// Empty stored value falls back too.
	if err := s.Set(key, ""); err != nil {
		t.Fatalf("Set (empty): %v", err)
	}
	val, _ = s.Get(key, "fallback")
	if val != "fallback" {
		t.Errorf("got %q, want fallback for empty value", val)
	}
}

func TestSettingStoreSetManyAndAll(t *testing.T) {
	db := testDB(t)
	s := NewSettingStore(db)

	keys := []string{"test_setting_a", "test_setting_b"}
	t.Cleanup(func() { cleanSettings(t, db, keys...) })

	err := s.SetMany(map[string]string{
		"test_setting_a": "1",
		"test_setting_b": "2",
	})
	if err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if all["test_setting_a"] != "1" || all["test_setting_b"] != "2" {
		t.Errorf("All missing keys: %v", all)
	}
}
