// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flag is a boolean that tolerates the loose encodings seen in storefront
// payloads: true/false, 0/1, "true"/"false", "0"/"1". Normalization happens
// once here, at the ingestion boundary, so everything downstream works with
// real booleans.
type Flag bool

// Bool returns the normalized value.
func (f Flag) Bool() bool { return bool(f) }

// UnmarshalJSON accepts bool, number, and string forms. null and anything
// unrecognized normalize to false rather than failing the whole payload.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = false
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("flag: %w", err)
		}
		*f = Flag(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flag: %w", err)
		}
		*f = parseFlagString(s)
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("flag: %w", err)
		}
		*f = n != 0
		return nil
	}
}

// MarshalJSON always emits a plain JSON boolean.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Scan implements sql.Scanner with the same tolerance for legacy columns
// stored as integers or text.
func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(v)
	case int64:
		*f = v != 0
	case []byte:
		*f = parseFlagString(string(v))
	case string:
		*f = parseFlagString(v)
	default:
		return fmt.Errorf("flag: cannot scan %T", src)
	}
	return nil
}

// Value implements driver.Valuer, storing a real boolean.
func (f Flag) Value() (driver.Value, error) {
	return bool(f), nil
}

func parseFlagString(s string) Flag {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "true", "t", "yes", "on":
		return true
	case "", "false", "f", "no", "off", "null":
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0
	}
	return false
}
